package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gigslides/pkg/auth"
	"gigslides/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage publishing credentials",
	Long: `Manage the Instagram and GitHub credentials used by 'gigslides publish'.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

Never share your credentials or config files!`,
}

var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store publishing credentials securely",
	Long: `Store an Instagram access token, business account id and GitHub token
under a name. Tokens are hidden as you type.`,
	Example: `  # Interactive login
  gigslides auth login

  # Store under a name
  gigslides auth login lml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout <name>",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"show"},
	Short:   "List stored accounts",
	Long:    `List stored accounts with their tokens masked. The newest is used by default.`,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	auth.ShowTokenGuide(ui.Output)

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		fmt.Fprint(ui.Output, "Account name (default \"default\"): ")
		input, _ := reader.ReadString('\n')
		name = strings.TrimSpace(input)
		if name == "" {
			name = "default"
		}
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Fprintf(ui.Output, "Account '%s' already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Fprint(ui.Output, "Instagram access token: ")
	token, err := readPassword(reader)
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}
	fmt.Fprint(ui.Output, "Instagram business account ID: ")
	accountID, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read account ID: %w", err)
	}
	fmt.Fprint(ui.Output, "GitHub token: ")
	githubToken, err := readPassword(reader)
	if err != nil {
		return fmt.Errorf("failed to read GitHub token: %w", err)
	}

	account := &auth.Account{
		Name:              name,
		AccessToken:       token,
		BusinessAccountID: strings.TrimSpace(accountID),
		GitHubToken:       githubToken,
		LastModified:      time.Now(),
	}
	if err := manager.Store(account); err != nil {
		return err
	}

	ui.PrintSuccess("Account saved: " + name)
	fmt.Fprintf(ui.Output, "\nPost with it using:\n  gigslides publish --account %s\n", name)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	ui.PrintSuccess("Account removed: " + args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	accounts, err := manager.List()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'gigslides auth login' to add one")
		return nil
	}

	for i, account := range accounts {
		a := auth.SanitizeAccount(account)
		fmt.Fprintf(ui.Output, "%d. %s\n", i+1, a.Name)
		fmt.Fprintf(ui.Output, "   Access token: %s\n", a.AccessToken)
		fmt.Fprintf(ui.Output, "   Business account: %s\n", a.BusinessAccountID)
		fmt.Fprintf(ui.Output, "   GitHub token: %s\n", a.GitHubToken)
		if !a.LastModified.IsZero() {
			fmt.Fprintf(ui.Output, "   Last modified: %s\n", a.LastModified.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

// readPassword reads a secret without echo when stdin is a terminal
func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(ui.Output)
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
