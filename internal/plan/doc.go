// Package plan turns probed state into an installation plan.
//
// Everything here is a pure function of its Input: no filesystem access, no
// process execution and no prompting. Interactive decisions are modeled as
// Questions that the caller asks at the I/O boundary and feeds back as
// Answers, so Build stays deterministic and callable any number of times.
package plan
