package render

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regform/pkg/controls"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/orchestrator"
	"github.com/goliatone/go-regform/pkg/validation"
)

var loadedSections = []model.Section{{ID: 1, Questions: []model.Question{{ID: 1}}}}

func TestBannerKinds(t *testing.T) {
	cases := []struct {
		name string
		snap orchestrator.Snapshot
		want []BannerKind
	}{
		{
			name: "loading",
			snap: orchestrator.Snapshot{Status: orchestrator.StatusLoading},
			want: []BannerKind{BannerLoading},
		},
		{
			name: "load error",
			snap: orchestrator.Snapshot{Status: orchestrator.StatusError, LoadError: "boom"},
			want: []BannerKind{BannerLoadError},
		},
		{
			name: "redirected",
			snap: orchestrator.Snapshot{Status: orchestrator.StatusRedirected},
			want: nil,
		},
		{
			name: "fresh form",
			snap: orchestrator.Snapshot{Status: orchestrator.StatusLoaded, Sections: loadedSections},
			want: nil,
		},
		{
			name: "no form",
			snap: orchestrator.Snapshot{Status: orchestrator.StatusLoaded},
			want: []BannerKind{BannerNoForm},
		},
		{
			name: "already registered with validation errors",
			snap: orchestrator.Snapshot{
				Status:       orchestrator.StatusLoaded,
				Sections:     loadedSections,
				Registration: model.RegistrationState{RegistrationID: 3},
				HasValidated: true,
				Validation:   validation.Report{Valid: false},
				SubmitState:  orchestrator.SubmitInvalid,
			},
			want: []BannerKind{BannerAlreadyRegistered, BannerValidation},
		},
		{
			name: "success hides already registered",
			snap: orchestrator.Snapshot{
				Status:       orchestrator.StatusLoaded,
				Sections:     loadedSections,
				Registration: model.RegistrationState{RegistrationID: 3},
				HasValidated: true,
				Validation:   validation.Report{Valid: true},
				SubmitState:  orchestrator.SubmitSuccess,
			},
			want: []BannerKind{BannerSuccess},
		},
		{
			name: "failure",
			snap: orchestrator.Snapshot{
				Status:       orchestrator.StatusLoaded,
				Sections:     loadedSections,
				HasValidated: true,
				Validation:   validation.Report{Valid: true},
				SubmitState:  orchestrator.SubmitFailure,
				SubmitError:  "Server error",
			},
			want: []BannerKind{BannerSubmitFailure},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, BannerKinds(tc.snap)); diff != "" {
				t.Fatalf("banner kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderer_Banners(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	banners, err := r.Banners(orchestrator.Snapshot{
		Status:       orchestrator.StatusLoaded,
		Sections:     loadedSections,
		HasValidated: true,
		Validation:   validation.Report{Valid: true},
		SubmitState:  orchestrator.SubmitFailure,
		SubmitError:  "Server error",
	})
	if err != nil {
		t.Fatalf("banners: %v", err)
	}
	want := []Banner{{Kind: BannerSubmitFailure, Level: LevelDanger, Text: "Server error, please try again"}}
	if diff := cmp.Diff(want, banners); diff != "" {
		t.Fatalf("banners mismatch (-want +got):\n%s", diff)
	}

	banners, err = r.Banners(orchestrator.Snapshot{
		Status:       orchestrator.StatusLoaded,
		Sections:     loadedSections,
		HasValidated: true,
		Validation:   validation.Report{Valid: false},
	})
	if err != nil {
		t.Fatalf("banners: %v", err)
	}
	if len(banners) != 1 || banners[0].Text != "There are one or more validation errors, please correct before submitting." {
		t.Fatalf("unexpected validation banner %#v", banners)
	}
}

func TestRenderer_SuccessBanner(t *testing.T) {
	r, err := New(WithEventName("Deep Learning Indaba"), WithInvitationURL("https://example.org/invitationLetter"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	banners, err := r.Banners(orchestrator.Snapshot{
		Status:      orchestrator.StatusLoaded,
		Sections:    loadedSections,
		SubmitState: orchestrator.SubmitSuccess,
	})
	if err != nil {
		t.Fatalf("banners: %v", err)
	}
	want := "Successfully Registered\n" +
		"We look forward to welcoming you at Deep Learning Indaba!\n" +
		"Request an invitation letter: https://example.org/invitationLetter\n" +
		`Select "Change your answers" to update your registration.`
	if len(banners) != 1 || banners[0].Text != want {
		t.Fatalf("unexpected success banner %#v", banners)
	}
	if banners[0].Level != LevelSuccess {
		t.Fatalf("expected success level, got %s", banners[0].Level)
	}
}

func TestRenderer_Question(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	got, err := r.Question(controls.Control{
		Kind:     controls.KindText,
		Headline: "<b>About you</b>",
		Label:    "Your <em>preferred</em> name",
		Required: true,
	}, "An answer is required.")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	want := "About you\nYour preferred name *\n  ! An answer is required."
	if got != want {
		t.Fatalf("question mismatch\nwant: %q\n got: %q", want, got)
	}

	got, err = r.Question(controls.Control{Kind: controls.KindUnknown, Warning: controls.UnknownWarning("signature")}, "")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if got != "WARNING: No control found for type signature!" {
		t.Fatalf("unknown control must render its warning, got %q", got)
	}
}

func TestRenderer_Section(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	got, err := r.Section(model.Section{Name: "Travel", Description: "<p>Tell us &amp; plan</p>"})
	if err != nil {
		t.Fatalf("section: %v", err)
	}
	if got != "== Travel ==\nTell us & plan" {
		t.Fatalf("unexpected section %q", got)
	}
}

func TestEngine_TemplateOverride(t *testing.T) {
	files := fstest.MapFS{
		"no_form.tpl": {Data: []byte("Registration is closed")},
	}
	engine, err := NewEngine(WithTemplateFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	r, err := New(WithEngine(engine))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	banners, err := r.Banners(orchestrator.Snapshot{Status: orchestrator.StatusLoaded})
	if err != nil {
		t.Fatalf("banners: %v", err)
	}
	if len(banners) != 1 || banners[0].Text != "Registration is closed" {
		t.Fatalf("expected override, got %#v", banners)
	}
}

func TestEngine_RenderString(t *testing.T) {
	engine, err := NewEngine(WithGlobals(map[string]any{"event": "Indaba"}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.RenderString("{{ event }}: {{ body|plaintext }}", map[string]any{"body": "<i>hi</i>"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Indaba: hi" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"":                                 "",
		"  plain  ":                        "plain",
		"<script>alert(1)</script>Visible": "Visible",
		"Line one<br>Line two":             "Line one\nLine two",
		"Fish &amp; chips":                 "Fish & chips",
	}
	for input, want := range cases {
		if got := PlainText(input); got != want {
			t.Fatalf("PlainText(%q) = %q, want %q", input, got, want)
		}
	}
}
