package mockapi

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-regform/pkg/client"
)

// GuardFunc rejects a request by returning an error. Errors implementing
// HTTPError choose the response status; anything else yields 403.
type GuardFunc func(r *http.Request) error

type Options struct {
	OfferPath                string
	RegistrationFormPath     string
	RegistrationResponsePath string
	Guard                    GuardFunc
	Logger                   *slog.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		OfferPath:                client.OfferPath,
		RegistrationFormPath:     client.RegistrationFormPath,
		RegistrationResponsePath: client.RegistrationResponsePath,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.OfferPath == "" {
		opts.OfferPath = client.OfferPath
	}
	if opts.RegistrationFormPath == "" {
		opts.RegistrationFormPath = client.RegistrationFormPath
	}
	if opts.RegistrationResponsePath == "" {
		opts.RegistrationResponsePath = client.RegistrationResponsePath
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opts
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithPaths(offer, form, response string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.OfferPath = offer
		o.RegistrationFormPath = form
		o.RegistrationResponsePath = response
	}
}

// RequireBearer is a guard accepting only requests carrying token as a
// bearer Authorization header.
func RequireBearer(token string) GuardFunc {
	return func(r *http.Request) error {
		if r.Header.Get("Authorization") != "Bearer "+token {
			return StatusError{Code: http.StatusUnauthorized}
		}
		return nil
	}
}
