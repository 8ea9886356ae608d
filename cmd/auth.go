package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jfmyers9/crates/internal/config"
	"github.com/jfmyers9/crates/pkg/discogs"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Discogs",
	Long: `Authenticate with Discogs and save the credentials to your config file.

By default you are prompted for a personal access token, which you can
generate at: https://www.discogs.com/settings/developers

With --oauth the OAuth flow is used instead:
1. You'll be prompted to enter your application's consumer key and secret
2. A browser URL will be provided for you to authorize the application
3. After authorization, paste the verification code shown by Discogs
4. The access token will be saved to your config file`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().String("token", "", "Personal access token (skips the prompt)")
	authCmd.Flags().Bool("oauth", false, "Use the OAuth flow instead of a personal access token")
}

func runAuth(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("Discogs Authentication")
	fmt.Println("======================")
	fmt.Println()

	useOAuth, _ := cmd.Flags().GetBool("oauth")
	if useOAuth {
		err = authOAuth(a, reader)
	} else {
		token, _ := cmd.Flags().GetString("token")
		err = authToken(a, reader, token)
	}
	if err != nil {
		return err
	}

	// Verify the credentials before saving them
	fmt.Println("\nVerifying credentials...")
	identity, _, err := a.client.User().GetIdentity(a.ctx)
	if err != nil {
		return fmt.Errorf("failed to verify credentials: %w", err)
	}
	a.cfg.Discogs.Username = identity.Username

	if err := a.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath := config.GetConfigDir()
	fmt.Printf("\n✓ Authentication successful! Logged in as %s\n", identity.Username)
	fmt.Printf("✓ Credentials saved to %s/config.yaml\n", configPath)
	fmt.Println("\nTry 'crates collection' to list your collection.")

	return nil
}

func authToken(a *app, reader *bufio.Reader, token string) error {
	if token == "" {
		fmt.Println("You can generate a personal access token at: https://www.discogs.com/settings/developers")
		fmt.Println()
		fmt.Print("Enter your Discogs personal access token: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = strings.TrimSpace(input)
	}

	if token == "" {
		return fmt.Errorf("personal access token is required")
	}

	a.cfg.Discogs.UserToken = token
	a.cfg.Discogs.OAuthToken = ""
	a.cfg.Discogs.OAuthTokenSecret = ""
	return a.client.SetAuth(a.cfg.Auth())
}

func authOAuth(a *app, reader *bufio.Reader) error {
	d := &a.cfg.Discogs

	fmt.Println("You can register an application at: https://www.discogs.com/settings/developers")
	fmt.Println()

	// Check if we already have credentials
	if d.ConsumerKey != "" && d.ConsumerSecret != "" {
		fmt.Printf("Found existing consumer credentials.\n")
		fmt.Printf("Consumer Key: %s\n", d.ConsumerKey)
		fmt.Print("\nUse existing credentials? [Y/n]: ")
		response, err := reader.ReadString('\n')
		if err != nil {
			response = "y"
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			d.ConsumerKey = ""
			d.ConsumerSecret = ""
		}
	}

	if d.ConsumerKey == "" {
		fmt.Print("Enter your Discogs Consumer Key: ")
		key, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read consumer key: %w", err)
		}
		d.ConsumerKey = strings.TrimSpace(key)
	}

	if d.ConsumerSecret == "" {
		fmt.Print("Enter your Discogs Consumer Secret: ")
		secret, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read consumer secret: %w", err)
		}
		d.ConsumerSecret = strings.TrimSpace(secret)
	}

	if d.ConsumerKey == "" || d.ConsumerSecret == "" {
		return fmt.Errorf("consumer key and secret are required")
	}

	if err := a.client.SetAuth(discogs.NewOAuth(d.ConsumerKey, d.ConsumerSecret, "", "")); err != nil {
		return err
	}

	fmt.Println("\nRequesting authorization token...")
	requestToken, err := a.client.OAuth().RequestToken(a.ctx, "")
	if err != nil {
		return fmt.Errorf("failed to get request token: %w", err)
	}

	fmt.Println("\nPlease visit this URL to authorize crates:")
	fmt.Printf("\n  %s\n\n", requestToken.AuthorizeURL)
	fmt.Print("Enter the verification code: ")
	verifier, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read verification code: %w", err)
	}
	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return fmt.Errorf("verification code is required")
	}

	fmt.Println("Retrieving access token...")
	auth, err := a.client.OAuth().AccessToken(a.ctx, requestToken, verifier)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	d.OAuthToken = auth.Token
	d.OAuthTokenSecret = auth.TokenSecret
	return nil
}
