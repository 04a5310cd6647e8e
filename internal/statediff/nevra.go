package statediff

import (
	"errors"
	"strconv"
	"strings"
)

var errInvalidNEVRA = errors.New("invalid NEVRA")

// Package is one installed package, parsed from name-[epoch:]version-release.arch.
type Package struct {
	Name    string
	Epoch   int
	Version string
	Release string
	Arch    string
}

// ParseNEVRA parses a package string such as "vim-enhanced-2:9.1.031-1.fc40.x86_64".
func ParseNEVRA(s string) (Package, error) {
	dot := strings.LastIndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return Package{}, errInvalidNEVRA
	}
	arch := s[dot+1:]
	rest := s[:dot]

	dash := strings.LastIndexByte(rest, '-')
	if dash <= 0 || dash == len(rest)-1 {
		return Package{}, errInvalidNEVRA
	}
	release := rest[dash+1:]
	rest = rest[:dash]

	dash = strings.LastIndexByte(rest, '-')
	if dash <= 0 || dash == len(rest)-1 {
		return Package{}, errInvalidNEVRA
	}
	name := rest[:dash]
	version := rest[dash+1:]

	epoch := 0
	if colon := strings.IndexByte(version, ':'); colon >= 0 {
		n, err := strconv.Atoi(version[:colon])
		if err != nil || n < 0 || colon == len(version)-1 {
			return Package{}, errInvalidNEVRA
		}
		epoch = n
		version = version[colon+1:]
	}
	return Package{Name: name, Epoch: epoch, Version: version, Release: release, Arch: arch}, nil
}

// String formats the package back to NEVRA form. A zero epoch is omitted.
func (p Package) String() string {
	return p.Name + "-" + p.EVR() + "." + p.Arch
}

// EVR formats the [epoch:]version-release part.
func (p Package) EVR() string {
	evr := p.Version + "-" + p.Release
	if p.Epoch > 0 {
		evr = strconv.Itoa(p.Epoch) + ":" + evr
	}
	return evr
}

// Key identifies the package slot that upgrades and downgrades replace.
func (p Package) Key() string {
	return p.Name + "." + p.Arch
}

// CompareEVR orders two packages by epoch, then version, then release.
func CompareEVR(a Package, b Package) int {
	switch {
	case a.Epoch < b.Epoch:
		return -1
	case a.Epoch > b.Epoch:
		return 1
	}
	if c := Vercmp(a.Version, b.Version); c != 0 {
		return c
	}
	return Vercmp(a.Release, b.Release)
}

// Vercmp compares two version strings the way rpm does. Runs of digits compare
// numerically and beat runs of letters; "~" sorts before anything, including
// the end of the string; "^" sorts after the end of the string but before
// any other segment.
func Vercmp(a string, b string) int {
	if a == b {
		return 0
	}
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		for i < len(a) && !isAlnum(a[i]) && a[i] != '~' && a[i] != '^' {
			i++
		}
		for j < len(b) && !isAlnum(b[j]) && b[j] != '~' && b[j] != '^' {
			j++
		}

		if at(a, i) == '~' || at(b, j) == '~' {
			if at(a, i) != '~' {
				return 1
			}
			if at(b, j) != '~' {
				return -1
			}
			i++
			j++
			continue
		}
		if at(a, i) == '^' || at(b, j) == '^' {
			if i >= len(a) {
				return -1
			}
			if j >= len(b) {
				return 1
			}
			if a[i] != '^' {
				return 1
			}
			if b[j] != '^' {
				return -1
			}
			i++
			j++
			continue
		}
		if i >= len(a) || j >= len(b) {
			break
		}

		si, sj := i, j
		numeric := isDigit(a[i])
		if numeric {
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
		} else {
			for i < len(a) && isAlpha(a[i]) {
				i++
			}
			for j < len(b) && isAlpha(b[j]) {
				j++
			}
		}
		segA, segB := a[si:i], b[sj:j]
		if segB == "" {
			// Segment types differ: numbers beat letters.
			if numeric {
				return 1
			}
			return -1
		}
		if numeric {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) > len(segB) {
					return 1
				}
				return -1
			}
		}
		if c := strings.Compare(segA, segB); c != 0 {
			return c
		}
	}
	switch {
	case i >= len(a) && j >= len(b):
		return 0
	case i >= len(a):
		return -1
	default:
		return 1
	}
}

func at(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isAlnum(c byte) bool { return isDigit(c) || isAlpha(c) }
