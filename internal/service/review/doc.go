// Package review records learner ratings against vocabulary items and builds
// due-review queues. Writes run inside one transaction that locks the item
// row, so concurrent ratings of the same item are applied one after another.
package review
