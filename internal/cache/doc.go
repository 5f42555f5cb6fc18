// Package cache stores synthesized speech clips on disk so repeated
// conversions of the same dialogue skip the speech backend.
package cache
