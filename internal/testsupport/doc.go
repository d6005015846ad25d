// Package testsupport provides shared helpers for package tests: temp-backed
// configurations, gallery store setup, and image fixture scaffolding.
package testsupport
