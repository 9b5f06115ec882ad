// Package bus collects speech, braille and lifecycle events from the
// target into a single ordered feed.
//
// A Hub fans events out to subscribers in one total arrival order and
// stamps each event with a non-decreasing timestamp. Sources (log-file
// tailing, JSON line streams) run on their own goroutines and publish into
// the Hub. An Adapter owns the Hub together with its sources.
package bus
