// Package tui is a terminal front end for registration sessions. A Runner
// prompts each active question with the control its type calls for, shows the
// page banners after every submit and loops until the user is done.
package tui
