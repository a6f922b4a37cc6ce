// Package domain contains the core business entities of the vocabulary
// trainer: learner-owned vocabulary items with their spaced repetition
// state, the immutable review attempt log, and the rating scale learners use
// to grade their recall. It is independent of any storage or transport.
package domain
