// Package review runs a spaced-repetition review session.
//
// A Session loads the due items from a Collaborator into a Queue, hands the
// head item to the presentation layer, and applies ratings back through the
// collaborator before mutating the queue. Forgotten items move to the tail
// of the queue for another pass in the same session; everything else leaves
// the queue. The Tracker keeps the progress counters the presentation shows.
//
// The queue payload is not refreshed after a rating: a requeued item keeps
// the due/stability/difficulty it was loaded with, and the collaborator's new
// schedule only shows up on the next StartSession.
package review
