// Package controls maps question types onto presentation controls. Each
// known type resolves to one Kind; anything else resolves to KindUnknown,
// which carries a warning a front end must display.
package controls
