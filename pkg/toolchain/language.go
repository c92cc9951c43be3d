package toolchain

// Language selects the front-end toolchain and symbol naming convention.
type Language int

const (
	Java Language = iota
	Kotlin
)

// ParseLanguage maps a --language value to a Language. Only "kotlin" selects
// Kotlin; every other value, including the empty string, selects Java.
func ParseLanguage(name string) Language {
	if name == "kotlin" {
		return Kotlin
	}
	return Java
}

func (l Language) String() string {
	if l == Kotlin {
		return "kotlin"
	}
	return "java"
}

// SourceExtension is the suffix trimmed from source files to derive class names.
func (l Language) SourceExtension() string {
	if l == Kotlin {
		return ".kt"
	}
	return ".java"
}
