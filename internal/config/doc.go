/*
Package config parses regform-cli settings.

Settings are layered, later layers winning:

  - built-in defaults (30s timeout, warn level, text logs)
  - a YAML file named by -config or REGFORM_CONFIG
  - REGFORM_* environment variables, then a .env file (-env-file)
  - command-line flags

Exactly one of -base-url (REGFORM_BASE_URL) or -fixture (REGFORM_FIXTURE)
must be set.
*/
package config
