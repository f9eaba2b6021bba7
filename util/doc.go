// Package util holds small parsing helpers shared by configuration code.
package util
