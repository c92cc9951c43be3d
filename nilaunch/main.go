package main

import (
	"fmt"
	"os"

	"nilaunch-tools/go/pkg/launch"
	"nilaunch-tools/go/pkg/logbowl"
	"nilaunch-tools/go/pkg/plan"
	"nilaunch-tools/go/pkg/toolchain"

	"github.com/spf13/cobra"
)

// InteractiveEnvVar switches the binary from launching to its subcommands.
const InteractiveEnvVar = "NILAUNCH_INTERACTIVE"

const usage = "nilaunch [--language=...] <target> <source> [<source> ...]"

// Version is set at build time
var Version = "dev"
var Commit = "none"
var Date = "unknown"

var (
	log      logbowl.Logger
	language string
)

func main() {
	log = logbowl.Create("nilaunch")

	isInteractive := os.Getenv(InteractiveEnvVar)
	if isInteractive == "true" || isInteractive == "1" {
		ExecuteInteractive()
	} else {
		ExecuteLaunch()
	}
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&language, "language", "java", `Source language; "kotlin" selects the Kotlin toolchain, anything else Java.`)
	// The language flag must come before the target and sources.
	cmd.Flags().SetInterspersed(false)
}

func buildArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected a target and at least one source, got %d argument(s)", len(args))
	}
	return nil
}

func loadPlan(args []string) plan.Plan {
	lang := toolchain.ParseLanguage(language)
	tc, err := toolchain.Load()
	if err == nil {
		tc, err = tc.Resolve(lang)
	}
	if err != nil {
		log.Fatal("config", "load", "error", "Could not load toolchain configuration", "error", err)
	}
	p := plan.Build(tc, lang, args[0], args[1:])
	log.Debug("launcher", "build", "ok", "Synthesized build plan", "language", p.Language.String(), "target", p.Target, "sources", len(args)-1)
	return p
}

func runLaunch(cmd *cobra.Command, args []string) {
	os.Exit(launch.New(log).Launch(loadPlan(args)))
}

var launchCmd = &cobra.Command{
	Use:           usage,
	Short:         "Compile Java or Kotlin sources and hand over to native-image",
	Args:          buildArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run:           runLaunch,
}

// ExecuteLaunch runs the default, non-interactive build.
func ExecuteLaunch() {
	// A build step has no help mode: -h or --help is a usage error.
	launchCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		log.Fatal("launcher", "parse", "invalid", usage, "error", "help is not available when launching a build")
	})
	if err := launchCmd.Execute(); err != nil {
		log.Fatal("launcher", "parse", "invalid", usage, "error", err)
	}
}

var rootCmd = &cobra.Command{Use: "nilaunch", Short: "Native-image build launcher"}

func ExecuteInteractive() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	addBuildFlags(launchCmd)
	addBuildFlags(runCmd)
	addBuildFlags(planCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(toolchainCmd)
	rootCmd.AddCommand(versionCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--language=...] <target> <source> [<source> ...]",
	Short: "Run the build (default behavior)",
	Args:  buildArgs,
	Run:   runLaunch,
}

var planCmd = &cobra.Command{
	Use:   "plan [--language=...] <target> <source> [<source> ...]",
	Short: "Print the compiler and native-image command lines without running them",
	Args:  buildArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := loadPlan(args)
		fmt.Println("Build plan for:", p.Target)
		fmt.Println("  Language:", p.Language)
		fmt.Println("  Compile:", p.Compile)
		fmt.Println("  Native image:", p.NativeImage)
	},
}

var toolchainCmd = &cobra.Command{
	Use:   "toolchain",
	Short: "Display the resolved toolchain locations",
	Run: func(cmd *cobra.Command, args []string) {
		tc, err := toolchain.Load()
		if err == nil {
			tc, err = tc.Resolve(toolchain.Kotlin)
		}
		if err != nil {
			log.Error("toolchain", "load", "error", "Could not load toolchain configuration", "error", err)
			os.Exit(1)
		}
		fmt.Println("Toolchain:")
		fmt.Println("  javac:", tc.Javac)
		fmt.Println("  java:", tc.Java)
		fmt.Println("  kotlinc home:", tc.KotlincHome)
		fmt.Println("  kotlin stdlib:", tc.KotlinStdlib)
		fmt.Println("  native-image:", tc.NativeImage)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nilaunch",
	Run: func(cmd *cobra.Command, args []string) {
		log.Debug("system", "info", "info", "nilaunch version information", "version", Version, "commit", Commit, "date", Date)
		fmt.Printf("nilaunch version %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}
