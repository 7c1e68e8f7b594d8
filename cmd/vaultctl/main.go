// vaultctl is a demo binary for exercising the wallet core end to end:
// setup with guardians, threshold signing, and guardian-assisted
// recovery. It keeps everything in memory; persistence, transports and
// real guardian delivery are the embedding application's job.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/wallet/facade"
	"github.com/luxfi/vault-core/wallet/guardian"
)

var (
	totalShares   int
	threshold     int
	ownerShares   int
	timelockHours int
	ownerPassword string
	message       string
	verbose       bool

	rootCmd = &cobra.Command{
		Use:   "vaultctl",
		Short: "Demo CLI for the social-recovery wallet core",
		Long: `vaultctl exercises the wallet core end to end: envelope-sealed share
setup with guardian invites, threshold signing, and guardian-assisted
recovery with timelock and cooldown. All state is in-memory; this is a
testing tool, not a wallet.`,
	}

	setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Create a wallet and print its share partition",
		RunE:  runSetup,
	}

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Create a wallet, unlock it past the threshold, and sign a message",
		RunE:  runSign,
	}

	recoverCmd = &cobra.Command{
		Use:   "recover",
		Short: "Run the full guardian recovery flow against a fresh wallet",
		RunE:  runRecover,
	}
)

func init() {
	rootCmd.PersistentFlags().IntVar(&totalShares, "total", 5, "total number of shares")
	rootCmd.PersistentFlags().IntVar(&threshold, "threshold", 3, "shares required to sign or recover")
	rootCmd.PersistentFlags().IntVar(&ownerShares, "owner-shares", 1, "shares kept by the owner")
	rootCmd.PersistentFlags().IntVar(&timelockHours, "timelock-hours", 0, "recovery timelock in hours")
	rootCmd.PersistentFlags().StringVar(&ownerPassword, "owner-password", "owner-password", "password sealing the owner shares")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	signCmd.Flags().StringVarP(&message, "message", "m", "hello", "message to sign")

	rootCmd.AddCommand(setupCmd, signCmd, recoverCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func config() facade.Config {
	return facade.Config{
		TotalShares:    totalShares,
		Threshold:      threshold,
		OwnerShares:    ownerShares,
		TimelockHours:  timelockHours,
		ExpirationDays: 30,
	}
}

// guardianDescriptors fabricates one descriptor per non-owner share,
// each with its own password, and returns the passwords alongside so
// the demo can play the guardians' side too.
func guardianDescriptors(n int) ([]facade.GuardianDescriptor, []string) {
	descs := make([]facade.GuardianDescriptor, n)
	passwords := make([]string, n)
	for i := range descs {
		passwords[i] = fmt.Sprintf("guardian-%d-password", i+1)
		descs[i] = facade.GuardianDescriptor{
			Name:          fmt.Sprintf("Guardian %d", i+1),
			Contact:       fmt.Sprintf("guardian%d@example.com", i+1),
			ContactType:   guardian.ContactEmail,
			SharePassword: passwords[i],
		}
	}
	return descs, passwords
}

func newWallet() (*facade.Facade, facade.SetupResult, []string, error) {
	f, err := facade.New(config(), time.Hour)
	if err != nil {
		return nil, facade.SetupResult{}, nil, err
	}
	descs, passwords := guardianDescriptors(totalShares - ownerShares)
	setup, err := f.Setup(ownerPassword, descs)
	if err != nil {
		return nil, facade.SetupResult{}, nil, err
	}
	return f, setup, passwords, nil
}

func runSetup(cmd *cobra.Command, args []string) error {
	_, setup, _, err := newWallet()
	if err != nil {
		return err
	}

	fmt.Printf("wallet address: %s\n", setup.WalletState.Address)
	fmt.Printf("key id:         %s\n", setup.WalletState.KeyID)
	fmt.Printf("owner shares:   %d, guardian invites: %d\n", len(setup.OwnerShares), len(setup.GuardianInvites))

	for _, inv := range setup.GuardianInvites {
		fmt.Printf("invite %s -> guardian %s (code %s, expires %s)\n",
			inv.ID, inv.GuardianID, inv.VerificationCode, inv.ExpiresAt.Format(time.RFC3339))
	}

	if verbose {
		for i, rec := range setup.OwnerShares {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			fmt.Printf("owner share %d: %s\n", i, data)
		}
	}
	return nil
}

func runSign(cmd *cobra.Command, args []string) error {
	f, setup, guardianPasswords, err := newWallet()
	if err != nil {
		return err
	}

	ok, err := f.UnlockOwnerShares(setup.OwnerShares, ownerPassword)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("owner shares unlocked: %v (can sign: %v)\n", ok, f.CanSign())
	}

	// Accept guardian invites and feed shares in until the wallet can
	// sign, the way a real host would after collecting approvals.
	for i, inv := range setup.GuardianInvites {
		if f.CanSign() {
			break
		}
		if err := f.Guardians().ProcessResponse(inv.ID, inv.GuardianID, true, inv.VerificationCode); err != nil {
			return err
		}
		g, found := f.Guardians().GetByID(inv.GuardianID)
		if !found {
			return fmt.Errorf("guardian %s missing after accept", inv.GuardianID)
		}
		rec := shareRecordFromInvite(setup, g.ShareIndex, inv)
		added, err := f.AddGuardianShare(rec, guardianPasswords[i])
		if err != nil {
			return err
		}
		if !added {
			return fmt.Errorf("guardian share %d failed to decrypt", g.ShareIndex)
		}
	}

	sig, err := f.SignMessage([]byte(message))
	if err != nil {
		return err
	}

	fmt.Printf("address:   %s\n", setup.WalletState.Address)
	fmt.Printf("message:   %q\n", message)
	fmt.Printf("signature: 0x%x\n", sig.Bytes())

	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	digest := ecdsasig.Keccak256([]byte(prefix), []byte(message))
	pub, err := ecdsasig.Recover(digest, ecdsasig.Signature{R: sig.R, S: sig.S, V: sig.V - 27})
	if err != nil {
		return err
	}
	fmt.Printf("recovered: %s\n", ecdsasig.Address(pub))
	return nil
}

func runRecover(cmd *cobra.Command, args []string) error {
	f, setup, guardianPasswords, err := newWallet()
	if err != nil {
		return err
	}

	// Every guardian accepts its invite up front.
	for _, inv := range setup.GuardianInvites {
		if err := f.Guardians().ProcessResponse(inv.ID, inv.GuardianID, true, inv.VerificationCode); err != nil {
			return err
		}
	}

	req, err := f.InitiateRecovery("owner", "demo recovery")
	if err != nil {
		return err
	}
	fmt.Printf("recovery %s initiated for %s (threshold %d)\n", req.ID, req.WalletAddress, req.Threshold)

	// Guardians decrypt their own shares and hand over the plaintext
	// values, which is exactly what approval means in this scheme.
	for i, inv := range setup.GuardianInvites {
		if i >= threshold {
			break
		}
		plaintext, err := openInviteShare(inv, guardianPasswords[i])
		if err != nil {
			return err
		}
		if err := f.AddRecoveryApproval(req.ID, inv.GuardianID, plaintext); err != nil {
			return err
		}
		fmt.Printf("approval %d/%d recorded\n", i+1, threshold)
	}

	if got, found := f.RecoveryRequest(req.ID); found {
		fmt.Printf("status: %s\n", got.Status)
	}

	secret, err := f.ExecuteRecovery(req.ID)
	if err != nil {
		return err
	}
	recoveredAddr := ecdsasig.Address(ecdsasig.PublicKeyFromScalar(secret))
	fmt.Printf("recovered key controls %s (wallet %s)\n", recoveredAddr, setup.WalletState.Address)
	return nil
}
