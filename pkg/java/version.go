// Package java installs and locates the Java runtimes the game needs. Runtimes
// come from the official runtime catalog when it covers the platform and from a
// static table of third-party builds otherwise.
package java

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a Java major version the launcher knows how to provision.
type Version int

const (
	Java8  Version = 8
	Java16 Version = 16
	Java17 Version = 17
	Java21 Version = 21
	Java25 Version = 25
)

// Versions lists every provisionable runtime, oldest first.
var Versions = []Version{Java8, Java16, Java17, Java21, Java25}

// FromMajor maps a javaVersion.majorVersion onto a provisionable runtime.
// Majors without a dedicated runtime use Java 21.
func FromMajor(major int) Version {
	switch v := Version(major); v {
	case Java8, Java16, Java17, Java25:
		return v
	default:
		return Java21
	}
}

// Parse accepts "8", "java8", "java_8" and similar spellings.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "java"), "_")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid java version %q", s)
	}
	for _, v := range Versions {
		if int(v) == n {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unsupported java version %d", n)
}

// String is the install directory name, e.g. "java_21".
func (v Version) String() string {
	return "java_" + strconv.Itoa(int(v))
}

// components returns the catalog component names for v in preference order.
func (v Version) components() []string {
	switch v {
	case Java8:
		return []string{"jre-legacy"}
	case Java16:
		return []string{"java-runtime-alpha"}
	case Java17:
		return []string{"java-runtime-gamma", "java-runtime-gamma-snapshot", "java-runtime-beta"}
	case Java25:
		return []string{"java-runtime-epsilon"}
	default:
		return []string{"java-runtime-delta"}
	}
}
