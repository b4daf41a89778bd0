package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	url := flag.String("url", "", "Weather Shopper URL (overrides config)")
	browser := flag.String("browser", "", "Browser family: chrome, chromium or edge (overrides config)")
	headless := flag.Bool("headless", false, "Run the browser without a visible window")
	dryRun := flag.Bool("dry-run", false, "Test mode: fill the payment form but stop before submitting")
	debug := flag.Bool("debug", false, "Enable detailed debug logging")
	flag.Parse()

	if err := InitLocale(); err != nil {
		log.Printf("Warning: Locale initialization failed, using default English: %v", err)
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *url != "" {
		config.AppURL = *url
	}
	if *browser != "" {
		config.BrowserType = *browser
	}
	if *headless {
		config.Headless = true
	}
	if *dryRun {
		config.DryRun = true
	}
	if *debug {
		config.DebugMode = true
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║            Weather Shopper Checkout Assistant             ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Target URL: %s\n", config.AppURL)
	fmt.Printf("Browser: %s\n", config.BrowserType)

	if config.DryRun {
		fmt.Println(T("dry_run_mode"))
	}
	if config.DebugMode {
		fmt.Println(T("debug_mode_enabled"))
	}
	fmt.Println()

	session := NewSession(config)
	defer session.Close()

	if err := session.Setup(); err != nil {
		log.Fatalf("Failed to set up browser session: %v", err)
	}

	orchestrator := NewFlowOrchestrator(config, session)
	result := orchestrator.Run()

	fmt.Println()
	if result.Succeeded(config.DryRun) {
		fmt.Println(T("run_succeeded"))
		if result.Message != "" {
			fmt.Println(T("run_success_message"))
			fmt.Println(result.Message)
		}
	} else {
		fmt.Printf(T("run_failed")+"\n", result.Stage, result.Err)
	}

	if config.KeepBrowserOpen {
		fmt.Println(T("keeping_browser_open"))
		time.Sleep(30 * time.Second)
	}

	if !result.Succeeded(config.DryRun) {
		session.Close()
		os.Exit(1)
	}
}
