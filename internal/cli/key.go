package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/law-makers/cheapreg/internal/secrets"
	"github.com/law-makers/cheapreg/internal/ui"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the exchange rate service API key",
		Long: `Stores the API key of the exchange rate service in the OS keyring, or in
an owner-only file under ~/.cheapreg when no keyring is available. The key is
sent as the access_key parameter. CHEAPREG_API_KEY or api_key in the config
file take precedence over the stored key.`,
	}

	setCmd := &cobra.Command{
		Use:   "set [KEY]",
		Short: "Store the API key (prompted when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := secretStore(cmd)
			if err != nil {
				return err
			}

			var value string
			if len(args) == 1 {
				value = args[0]
			} else {
				value, err = readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}
			if err := store.Set(secrets.APIKeyName, strings.TrimSpace(value)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s API key saved (%s)\n", ui.Success("✓"), store.Backend())
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored API key, masked unless --reveal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := secretStore(cmd)
			if err != nil {
				return err
			}
			value, err := store.Get(secrets.APIKeyName)
			if err != nil {
				return err
			}
			if reveal, _ := cmd.Flags().GetBool("reveal"); !reveal {
				value = secrets.Mask(value)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
	showCmd.Flags().Bool("reveal", false, "Print the key in clear")

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := secretStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Delete(secrets.APIKeyName); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s API key deleted\n", ui.Success("✓"))
			return nil
		},
	}

	cmd.AddCommand(setCmd, showCmd, deleteCmd)
	return cmd
}

func secretStore(cmd *cobra.Command) (*secrets.Store, error) {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	store, err := a.SecretStore()
	if err != nil {
		return nil, fmt.Errorf("no secret store available: %w", err)
	}
	return store, nil
}

// readSecret reads one line from in, without echo when in is a terminal
func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return line, nil
}
