// Command curator scans inboxes, classifies documents against a
// taxonomy, and migrates approved items into an organized library.
package main
