package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide explains where the publishing credentials come from
func ShowTokenGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "PUBLISHING CREDENTIALS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "gigslides posts through the Instagram Graph API and hosts slide images")
	fmt.Fprintln(w, "in a GitHub repository for the few minutes Instagram needs to fetch them.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Instagram access token")
	fmt.Fprintln(w, "   - Open https://developers.facebook.com/tools/explorer")
	fmt.Fprintln(w, "   - Select the app linked to the Instagram business account")
	fmt.Fprintln(w, "   - Grant instagram_basic and instagram_content_publish")
	fmt.Fprintln(w, "   - Exchange the token for a long-lived one (valid about 60 days)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "2. Instagram business account ID")
	fmt.Fprintln(w, "   - In the explorer, query: me/accounts?fields=instagram_business_account")
	fmt.Fprintln(w, "   - Copy the numeric id under instagram_business_account")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "3. GitHub token")
	fmt.Fprintln(w, "   - Create a fine-grained token at https://github.com/settings/tokens")
	fmt.Fprintln(w, "   - Limit it to the image repository with Contents: read and write")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "CI runs can skip this and set %s, %s and %s.\n", EnvAccessToken, EnvAccountID, EnvGitHubToken)
	fmt.Fprintln(w, "Tokens are saved to the system keychain, or an encrypted file when no keychain exists.")
	fmt.Fprintln(w, rule)
}
