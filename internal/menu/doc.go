// Package menu implements the one-shot selection cache behind
// interactive category menus.
//
// A menu is a set of choices offered together: one fresh unguessable
// token per choice, all tagged with a shared menu id. Resolving any
// token consumes the whole menu, so a second tap on a sibling button
// lands on a missing token and reads as an expired selection, never a
// double record.
//
// The cache is memory-only and intentionally not persisted: a menu that
// does not survive a restart is an expired selection, which the user
// can simply re-issue.
package menu
