// Package plan synthesizes the two command lines of a native build: the
// front-end compiler that writes class files into the working directory and
// the native-image invocation that turns them into an executable.
package plan

import (
	"strings"

	"nilaunch-tools/go/pkg/proc"
	"nilaunch-tools/go/pkg/toolchain"
)

// Fixed JVM tuning for the front-end compilers.
var (
	javacFlags  = []string{"-J-Xmx896M", "-J-Xms32M", "-J-XX:+UseSerialGC"}
	kotlinFlags = []string{"-Xmx896M", "-Xms32M", "-XX:+UseSerialGC"}
	outputFlags = []string{"-d", "."}

	nativeImageFlags = []string{"-dsa", "-H:NumberOfThreads=1", "-J-Xms512M", "-J-Xmx896M"}
)

const (
	kotlinPreloaderMain = "org.jetbrains.kotlin.preloading.Preloader"
	kotlinCompilerMain  = "org.jetbrains.kotlin.cli.jvm.K2JVMCompiler"

	// kotlinFileClassSuffix is appended by kotlinc to the class holding the
	// top-level declarations of a file, main included.
	kotlinFileClassSuffix = "Kt"
)

// Plan is the pair of commands for one build.
type Plan struct {
	Language    toolchain.Language
	Target      string
	Compile     proc.Command
	NativeImage proc.Command
}

// Build synthesizes both commands. sources must not be empty; callers reject
// that case before planning.
func Build(tc toolchain.Toolchain, lang toolchain.Language, target string, sources []string) Plan {
	var compile, native proc.Command

	native = append(native, tc.NativeImage)
	native = append(native, nativeImageFlags...)

	switch lang {
	case toolchain.Kotlin:
		compile = append(compile, tc.Java)
		compile = append(compile, kotlinFlags...)
		compile = append(compile,
			"-cp", tc.KotlinLib("kotlin-preloader.jar"), kotlinPreloaderMain,
			"-cp", tc.KotlinLib("kotlin-compiler.jar"), kotlinCompilerMain,
		)
		native = append(native, "-cp", tc.KotlinStdlib+":.")
	default:
		compile = append(compile, tc.Javac)
		compile = append(compile, javacFlags...)
	}
	compile = append(compile, outputFlags...)

	for _, src := range sources {
		compile = append(compile, src)
		native = append(native, EntryPoint(lang, src))
	}
	native = append(native, target)

	return Plan{Language: lang, Target: target, Compile: compile, NativeImage: native}
}

// EntryPoint derives the class native-image must load for a source file.
func EntryPoint(lang toolchain.Language, source string) string {
	name := TrimExtension(source, lang.SourceExtension())
	if lang == toolchain.Kotlin {
		return name + kotlinFileClassSuffix
	}
	return name
}

// TrimExtension removes the exact trailing extension from filename, if present.
func TrimExtension(filename, extension string) string {
	return strings.TrimSuffix(filename, extension)
}
