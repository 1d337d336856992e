// Package shared holds code used by several packages that belongs to none
// of them.
//
// testutil provides test helpers: a buffered slog handler for asserting on
// log output and excelize fixtures for building source workbooks.
package shared
