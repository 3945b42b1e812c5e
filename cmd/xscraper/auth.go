package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"xscraper/pkg/auth"
	"xscraper/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage X session cookies",
	Long: `Manage stored X session cookies securely.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (XSCRAPER_AUTH_TOKEN / XSCRAPER_CT0)

Never share your cookies or config files!`,
}

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login [handle]",
	Short: "Store X session cookies securely",
	Long: `Store X session cookies securely in the system keychain or an
encrypted file.

You will be prompted for:
  - Account handle (if not provided)
  - auth_token cookie value
  - ct0 cookie value (CSRF token)
  - User Agent (optional, press Enter for default)`,
	Example: `  # Interactive login
  xscraper auth login

  # Login with handle
  xscraper auth login myhandle`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAuthLogin,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout [handle]",
	Short: "Remove stored session cookies",
	Example: `  # Remove one account
  xscraper auth logout myhandle

  # Remove all accounts
  xscraper auth logout --all`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAuthLogout,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored X accounts with sanitized cookie information.`,
	Run:   runAuthList,
}

// authGuideCmd represents the auth guide command
var authGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the cookie extraction guide",
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowCookieExtractionGuide()
	},
}

var logoutAll bool

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authGuideCmd)

	authLogoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove all stored accounts")
}

func runAuthLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	var handle string
	if len(args) > 0 {
		handle = strings.TrimPrefix(args[0], "@")
	}

	reader := bufio.NewReader(os.Stdin)

	// Show extraction guide first
	auth.ShowQuickExtractGuide()
	fmt.Println()

	if handle == "" {
		fmt.Print("Account handle: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read handle", err.Error())
			os.Exit(1)
		}
		handle = strings.TrimPrefix(strings.TrimSpace(input), "@")
	}

	if handle == "" {
		ui.PrintError("Handle is required")
		os.Exit(1)
	}

	// Check if the account already exists
	if existing, _ := manager.Retrieve(handle); existing != nil {
		fmt.Printf("\nAccount '%s' already exists. Update cookies? (y/N): ", handle)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter your cookie values (they will be hidden as you type):")
	fmt.Println()

	// Get auth_token with validation
	var authToken string
	for {
		fmt.Print("auth_token cookie value: ")
		authToken, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read auth token", err.Error())
			os.Exit(1)
		}

		// Basic validation
		if len(authToken) < 20 {
			fmt.Println("\nThat doesn't look like a valid auth_token.")
			fmt.Println("It should be a 40-character hex string.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	// Get ct0 with validation
	var csrfToken string
	for {
		fmt.Print("\nct0 cookie value: ")
		csrfToken, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read CSRF token", err.Error())
			os.Exit(1)
		}

		if len(csrfToken) < 20 {
			fmt.Println("\nThat doesn't look like a valid ct0 value.")
			fmt.Println("It should be a long hex string.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	// Optional: user agent
	fmt.Print("\n\nUser Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	session := &auth.Session{
		Handle:       handle,
		AuthToken:    authToken,
		CSRFToken:    csrfToken,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	if err := manager.Store(session); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Session saved for @%s", handle))

	fmt.Println("\nYour cookies are encrypted and stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Println("  • System keychain (primary)")
	}
	fmt.Println("  • Encrypted file (backup)")
	fmt.Println("\nStart collecting:")
	fmt.Printf("  $ xscraper scrape <username>\n")
}

func runAuthLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	if logoutAll {
		if err := manager.DeleteAll(); err != nil {
			ui.PrintError("Failed to remove accounts", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("All stored accounts removed")
		return
	}

	if len(args) == 0 {
		ui.PrintError("Provide a handle, or use --all")
		os.Exit(1)
	}

	handle := strings.TrimPrefix(args[0], "@")
	if err := manager.Delete(handle); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: @" + handle)
}

func runAuthList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	sessions, err := manager.List()
	if err != nil || len(sessions) == 0 {
		fmt.Println("No stored accounts.")
		fmt.Println("Run 'xscraper auth login' to add one.")
		return
	}

	fmt.Printf("Stored accounts (%d):\n\n", len(sessions))
	for _, session := range sessions {
		sanitized := auth.SanitizeSession(session)
		fmt.Printf("  @%s\n", sanitized.Handle)
		fmt.Printf("    auth_token: %s\n", sanitized.AuthToken)
		fmt.Printf("    ct0:        %s\n", sanitized.CSRFToken)
		fmt.Printf("    updated:    %s\n\n", sanitized.LastModified.Format("2006-01-02 15:04"))
	}
}

// readPassword reads a line from stdin without echoing it
func readPassword() (string, error) {
	data, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
