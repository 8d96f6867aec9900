package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/profilevault/cmd"
	"github.com/illarion/profilevault/internal/crypto"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "enroll":
		runEnroll(ctx, os.Args[2:])
	case "show":
		runShow(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "logout":
		runLogout(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// commonFlags registers the flags every command shares
func commonFlags(fs *flag.FlagSet) (bundlePath *string, useKeyring *bool) {
	bundlePath = fs.String("bundle", cmd.DefaultBundlePath, "Path to the profile bundle")
	useKeyring = fs.Bool("keyring", false, "Persist the session token in the OS keyring")
	return bundlePath, useKeyring
}

func runEnroll(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("enroll", flag.ExitOnError)
	bundlePath, _ := commonFlags(fs)
	iterations := fs.Int("iterations", crypto.DefaultIters, "PBKDF2 iterations for a new bundle")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: profilevault enroll [flags] <fields.json>")
		os.Exit(1)
	}

	cmd.Enroll(ctx, *bundlePath, fs.Arg(0), *iterations)
}

func runShow(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	bundlePath, useKeyring := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Show(ctx, *bundlePath, *useKeyring)
}

func runStatus(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	bundlePath, useKeyring := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Status(ctx, *bundlePath, *useKeyring)
}

func runLogout(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	bundlePath, useKeyring := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Logout(ctx, *bundlePath, *useKeyring)
}

func runDiff(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	bundlePath, useKeyring := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: profilevault diff [flags] <fields.json>")
		os.Exit(1)
	}

	cmd.Diff(ctx, *bundlePath, fs.Arg(0), *useKeyring)
}

func runCompact(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	bundlePath := fs.String("bundle", cmd.DefaultBundlePath, "Path to the profile bundle")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Compact(ctx, *bundlePath)
}

func printUsage() {
	fmt.Println("profilevault - Password-gated encrypted profile store")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  profilevault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  enroll      Encrypt a plaintext fields file under a new password")
	fmt.Println("  show        Unlock the matching profile and print its fields")
	fmt.Println("  status      Show bundle and session state")
	fmt.Println("  logout      Remove the persisted session token")
	fmt.Println("  diff        Compare enrolled fields against a plaintext file")
	fmt.Println("  compact     Compact the bundle to reclaim disk space")
	fmt.Println("  help        Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  profilevault enroll profile.json    # Enroll a new profile")
	fmt.Println("  profilevault show                   # Unlock and print")
	fmt.Println("  profilevault show -keyring          # Keep the session in the OS keyring")
	fmt.Println("  profilevault logout                 # Drop the persisted session")
}
