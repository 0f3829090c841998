// Package heuristics scores files against ordered keyword rules so obvious
// classifications never need an inference round trip.
package heuristics
