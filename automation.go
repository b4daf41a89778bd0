package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Session owns the single browser session a run drives. It is passed
// explicitly to every component; there is no process-wide driver singleton.
type Session struct {
	config   *Config
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	stopChan chan bool
}

func NewSession(config *Config) *Session {
	return &Session{
		config:   config,
		stopChan: make(chan bool, 1),
	}
}

func (s *Session) Close() {
	select {
	case s.stopChan <- true:
	default:
	}

	fmt.Println(T("cleaning_up"))

	if s.page != nil {
		s.page.Close()
	}

	if s.browser != nil {
		s.browser.Close()
	}

	if s.launcher != nil {
		s.launcher.Cleanup()
	}

	fmt.Println(T("browser_destroyed"))
}

// Page returns the session's default page scope.
func (s *Session) Page() *rod.Page {
	return s.page
}

func (s *Session) isBrowserAlive() bool {
	if s.browser == nil {
		return false
	}

	_, err := s.browser.Version()
	if err != nil {
		s.debugLog("Browser version check failed: %v", err)
		return false
	}

	if s.page != nil {
		_, err := s.page.Info()
		if err != nil {
			s.debugLog("Page info check failed: %v", err)
			return false
		}
	}

	return true
}

func (s *Session) checkBrowserOrExit() {
	if !s.isBrowserAlive() {
		fmt.Println(T("browser_closed_by_user"))
		fmt.Println(T("shutting_down"))
		os.Exit(1)
	}
}

func (s *Session) watchBrowser() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.checkBrowserOrExit()
		}
	}
}

func (s *Session) debugLog(format string, args ...interface{}) {
	if s.config.DebugMode {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

func (s *Session) logf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// Setup launches the configured browser family and opens a stealth page.
func (s *Session) Setup() error {
	fmt.Println(T("browser_launching"))

	// Disable leakless mode on Windows to prevent deadlock
	// See: https://github.com/go-rod/rod/issues/853
	useLeakless := runtime.GOOS != "windows"

	s.launcher = launcher.New().
		Leakless(useLeakless).
		Headless(s.config.Headless)

	binPath, binFound := resolveBrowserBin(s.config.BrowserType)
	if binFound {
		s.launcher = s.launcher.Bin(binPath)
		fmt.Printf(T("browser_using_binary")+"\n", s.config.BrowserType, binPath)
	} else {
		fmt.Printf(T("browser_binary_not_found")+"\n", s.config.BrowserType)
		// Falls back to rod's automatic Chromium download.
	}

	if runtime.GOOS == "windows" {
		fmt.Println(T("windows_leakless_disabled"))
	}

	url, err := s.launcher.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	s.browser = rod.New().ControlURL(url).MustConnect()

	s.page, err = stealth.Page(s.browser)
	if err != nil {
		return fmt.Errorf("failed to create stealth page: %w", err)
	}

	go s.watchBrowser()
	s.debugLog("browser watcher started")

	fmt.Println(T("browser_launched"))
	return nil
}

// Navigate loads a URL on the default page and waits for the load event.
func (s *Session) Navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := s.page.WaitLoad(); err != nil {
		return fmt.Errorf("page failed to load: %w", err)
	}
	return nil
}

// WaitPageReady polls document.readyState until complete or the page load
// timeout elapses. Every wait in the flow is condition-based and bounded.
func (s *Session) WaitPageReady() error {
	deadline := time.Now().Add(s.config.pageLoadTimeout())
	interval := s.config.pollInterval()

	for {
		state, err := s.page.Eval(`() => document.readyState`)
		if err == nil && state.Value.Str() == "complete" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("page did not become ready within %s", s.config.pageLoadTimeout())
		}
		time.Sleep(interval)
	}
}

// ScrollIntoView brings an element into the viewport before clicking it.
func (s *Session) ScrollIntoView(el *rod.Element) {
	if err := el.ScrollIntoView(); err != nil {
		s.debugLog("scroll into view failed: %v", err)
	}
}

// resolveBrowserBin maps a configured browser family to an installed binary.
// The chrome family defers to rod's own lookup, which already covers the
// usual install locations.
func resolveBrowserBin(browserType string) (string, bool) {
	switch browserType {
	case "chromium":
		return lookPathFirst("chromium", "chromium-browser")
	case "edge":
		return lookPathFirst("microsoft-edge", "microsoft-edge-stable", "msedge")
	default:
		return launcher.LookPath()
	}
}

func lookPathFirst(names ...string) (string, bool) {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	// Fall back to anything rod can find rather than failing outright.
	return launcher.LookPath()
}

func contains(s string, substrs ...string) bool {
	s = toLower(s)
	for _, substr := range substrs {
		if len(s) >= len(substr) {
			for i := 0; i <= len(s)-len(substr); i++ {
				if s[i:i+len(substr)] == toLower(substr) {
					return true
				}
			}
		}
	}
	return false
}

func toLower(s string) string {
	result := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		result[i] = c
	}
	return string(result)
}
