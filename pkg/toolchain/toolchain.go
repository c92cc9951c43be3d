// Package toolchain locates the compilers nilaunch drives.
//
// Locations default to the layout of the build image and can be overridden
// by a YAML file named in NILAUNCH_TOOLCHAIN_FILE and then by individual
// environment variables.
package toolchain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Environment variable names
const (
	FileEnvVar         = "NILAUNCH_TOOLCHAIN_FILE"
	JavacEnvVar        = "NILAUNCH_JAVAC"
	JavaEnvVar         = "NILAUNCH_JAVA"
	KotlincHomeEnvVar  = "NILAUNCH_KOTLINC_HOME"
	KotlinStdlibEnvVar = "NILAUNCH_KOTLIN_STDLIB"
	NativeImageEnvVar  = "NILAUNCH_NATIVE_IMAGE"
)

// Default install locations
const (
	DefaultJavac       = "/usr/bin/javac"
	DefaultJava        = "/usr/bin/java"
	DefaultKotlincHome = "/usr/lib/jvm/kotlinc"
	DefaultNativeImage = "/usr/lib/jvm/graalvm/bin/native-image"
)

// Toolchain holds absolute paths to every program and jar a build needs.
type Toolchain struct {
	Javac        string `yaml:"javac"`
	Java         string `yaml:"java"`
	KotlincHome  string `yaml:"kotlinc_home"`
	KotlinStdlib string `yaml:"kotlin_stdlib"` // may be a glob
	NativeImage  string `yaml:"native_image"`
}

// Default returns the toolchain of the stock build image.
func Default() Toolchain {
	return Toolchain{
		Javac:       DefaultJavac,
		Java:        DefaultJava,
		KotlincHome: DefaultKotlincHome,
		NativeImage: DefaultNativeImage,
	}
}

// KotlinLib returns the path of a jar shipped in the kotlinc lib directory.
func (t Toolchain) KotlinLib(jar string) string {
	return filepath.Join(t.KotlincHome, "lib", jar)
}

// Load builds the effective toolchain from defaults, the optional YAML file
// and environment overrides, then validates it. KotlinStdlib may still be a
// pattern; see Resolve.
func Load() (Toolchain, error) {
	tc := Default()

	if path := os.Getenv(FileEnvVar); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Toolchain{}, fmt.Errorf("failed to read toolchain file: %w", err)
		}
		if err := tc.merge(data); err != nil {
			return Toolchain{}, fmt.Errorf("failed to parse toolchain file %s: %w", path, err)
		}
	}

	override(&tc.Javac, JavacEnvVar)
	override(&tc.Java, JavaEnvVar)
	override(&tc.KotlincHome, KotlincHomeEnvVar)
	override(&tc.KotlinStdlib, KotlinStdlibEnvVar)
	override(&tc.NativeImage, NativeImageEnvVar)

	if tc.KotlinStdlib == "" {
		tc.KotlinStdlib = tc.KotlinLib("kotlin-stdlib.jar")
	}

	if err := tc.Validate(); err != nil {
		return Toolchain{}, err
	}
	return tc, nil
}

// merge overlays the non-empty fields of a YAML document onto t.
func (t *Toolchain) merge(data []byte) error {
	var file Toolchain
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	for _, f := range []struct{ dst, src *string }{
		{&t.Javac, &file.Javac},
		{&t.Java, &file.Java},
		{&t.KotlincHome, &file.KotlincHome},
		{&t.KotlinStdlib, &file.KotlinStdlib},
		{&t.NativeImage, &file.NativeImage},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
	return nil
}

func override(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

// Resolve prepares the toolchain for a build in lang. Only Kotlin builds use
// the stdlib jar, so only they expand its pattern.
func (t Toolchain) Resolve(lang Language) (Toolchain, error) {
	if lang != Kotlin {
		return t, nil
	}
	stdlib, err := resolveGlob(t.KotlinStdlib)
	if err != nil {
		return Toolchain{}, err
	}
	t.KotlinStdlib = stdlib
	return t, nil
}

// resolveGlob expands a doublestar pattern to its highest versioned match, so
// that kotlin-stdlib-*.jar picks 1.10.0 over 1.9.0. Plain paths are returned
// unchanged without touching the filesystem.
func resolveGlob(pattern string) (string, error) {
	if !hasMeta(pattern) {
		return pattern, nil
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid kotlin stdlib pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("kotlin stdlib pattern %q matched no files", pattern)
	}
	sort.Slice(matches, func(i, j int) bool { return versionLess(matches[i], matches[j]) })
	return matches[len(matches)-1], nil
}

// versionLess orders names the way humans order versions: runs of digits
// compare numerically, everything else byte by byte.
func versionLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := digitRun(a), digitRun(b)
		if da > 0 && db > 0 {
			na, nb := strings.TrimLeft(a[:da], "0"), strings.TrimLeft(b[:db], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = a[da:], b[db:]
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func digitRun(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// Validate checks that every location is an absolute path.
func (t Toolchain) Validate() error {
	var errs []error
	for _, f := range []struct{ name, path string }{
		{"javac", t.Javac},
		{"java", t.Java},
		{"kotlinc_home", t.KotlincHome},
		{"kotlin_stdlib", t.KotlinStdlib},
		{"native_image", t.NativeImage},
	} {
		if !filepath.IsAbs(f.path) {
			errs = append(errs, fmt.Errorf("%s must be an absolute path, got %q", f.name, f.path))
		}
	}
	return errors.Join(errs...)
}
