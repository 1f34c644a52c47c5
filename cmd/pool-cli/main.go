// Privacy pool CLI - command-line interface for a client-side wallet.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"strconv"

	"github.com/ccoin/privacypool/internal/derivation"
	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/merkletree"
	"github.com/ccoin/privacypool/internal/note"
	"github.com/ccoin/privacypool/internal/planner"
	"github.com/ccoin/privacypool/internal/prover"
	"github.com/ccoin/privacypool/internal/wallet"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("pool-cli v%s\n", version)

	case "help":
		printUsage()

	case "wallet":
		if len(os.Args) < 3 {
			fmt.Println("Usage: pool-cli wallet <subcommand>")
			fmt.Println("Subcommands: new, balance, notes")
			os.Exit(1)
		}
		cmdWallet(os.Args[2:])

	case "deposit":
		if len(os.Args) < 3 {
			fmt.Println("Usage: pool-cli deposit <amount>")
			os.Exit(1)
		}
		cmdDeposit(os.Args[2:])

	case "claim":
		if len(os.Args) < 4 {
			fmt.Println("Usage: pool-cli claim <slot_id> <amount>")
			os.Exit(1)
		}
		cmdClaim(os.Args[2:])

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("pool-cli - command-line interface for the privacy pool wallet")
	fmt.Println()
	fmt.Println("Usage: pool-cli <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  version     Show version information")
	fmt.Println("  help        Show this help message")
	fmt.Println("  wallet      Wallet operations (new, balance, notes)")
	fmt.Println("  deposit     Generate a note ready to deposit")
	fmt.Println("  claim       Pay an auction slot's bidder via a claim credential")
	fmt.Println()
	fmt.Println("Use 'pool-cli wallet' for wallet subcommands.")
}

func walletPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return dir + "/.privacypool"
}

func cmdWallet(args []string) {
	switch args[0] {
	case "new":
		cmdWalletNew()
	case "balance":
		cmdWalletBalance()
	case "notes":
		cmdWalletNotes()
	default:
		fmt.Printf("Unknown wallet command: %s\n", args[0])
	}
}

func cmdWalletNew() {
	fmt.Println("Generating a fresh wallet seed...")

	sig := make([]byte, 64)
	if _, err := rand.Read(sig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	seed := derivation.MasterSeedFromSignature(sig)

	ctx := context.Background()
	store, err := wallet.NewFileStore(walletPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	w := wallet.New("default", seed, store)
	if err := w.SetLastScannedBlock(ctx, 0); err != nil {
		fmt.Fprintf(os.Stderr, "Error persisting new wallet: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Wallet created.")
	fmt.Printf("  Master seed (keep this secret): %s\n", seed.Decimal())
	fmt.Printf("  Stored at: %s\n", walletPath())
}

func cmdWalletBalance() {
	w, err := loadWallet()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	balances := w.Balances()
	fmt.Println("Wallet Balance:")
	fmt.Printf("  Available: %s\n", balances.Available.Decimal())
	fmt.Printf("  Pending:   %s\n", balances.Pending.Decimal())
	fmt.Printf("  Total:     %s\n", balances.Total.Decimal())
}

func cmdWalletNotes() {
	w, err := loadWallet()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	notes := w.ConfirmedNotes()
	if len(notes) == 0 {
		fmt.Println("No confirmed notes.")
		return
	}

	fmt.Println("Confirmed notes:")
	for _, n := range notes {
		fmt.Printf("  leaf=%d amount=%s commitment=%s\n", *n.LeafIndex, n.Amount.Decimal(), n.Commitment.Decimal())
	}
}

func cmdDeposit(args []string) {
	amountValue, err := field.FromDecimal(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid amount: %v\n", err)
		os.Exit(1)
	}

	w, err := loadWallet()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	n, err := w.GenerateNote(context.Background(), amountValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating note: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Note generated. Post this commitment on-chain to complete the deposit:")
	fmt.Printf("  commitment: %s\n", n.Commitment.Decimal())
	fmt.Printf("  amount:     %s\n", n.Amount.Decimal())
}

// cmdClaim exercises the spend planner → proof backend path end to end
// (spec.md §2's G→H data flow, §3's auction scenario, §8 scenario 2):
// it derives this wallet's claim credential for slotID, plans a
// transfer whose output commitment is the bidder's claim_commitment,
// converts the plan into a prover.Witness, and proves it in-process.
// The accumulator here is rebuilt from the wallet's own confirmed
// notes rather than fetched from a synced chain view (cmd/poold owns
// the real one) — sufficient to demonstrate the wiring, not a
// substitute for a chain-synced membership proof.
func cmdClaim(args []string) {
	slotID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid slot_id: %v\n", err)
		os.Exit(1)
	}
	amount, err := field.FromDecimal(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid amount: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	w, err := loadWallet()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	claimSecret, claimCommitment := w.ClaimCommitment(slotID)

	confirmed := w.ConfirmedNotes()
	tree := merkletree.New(merkletree.NewInMemoryStore())
	for _, n := range confirmed {
		if _, err := tree.Append(ctx, n.Commitment); err != nil {
			fmt.Fprintf(os.Stderr, "Error rebuilding local tree: %v\n", err)
			os.Exit(1)
		}
	}

	mintChange := func(ctx context.Context, changeAmount field.Element) (*note.Note, error) {
		return w.GenerateNote(ctx, changeAmount)
	}

	plan, err := planner.PrepareTransfer(ctx, confirmed, tree, amount, claimCommitment, mintChange)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error planning claim transfer: %v\n", err)
		os.Exit(1)
	}

	witness := prover.WitnessFromTransfer(plan)
	orchestrator := prover.NewOrchestrator(prover.NewInProcessBackend(), nil)
	result, err := orchestrator.Prove(ctx, prover.PreferInProcess, witness)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error proving claim transfer: %v\n", err)
		os.Exit(1)
	}

	if err := w.MarkSpentLocally(ctx, plan.Input.Note.Commitment, fmt.Sprintf("claim-slot-%d", slotID)); err != nil {
		fmt.Fprintf(os.Stderr, "Error marking input note spent: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Claim credential derived and transfer proved.")
	fmt.Printf("  slot_id:          %d\n", slotID)
	fmt.Printf("  claim_secret:     %s  (hand this to the bidder out of band)\n", claimSecret.Decimal())
	fmt.Printf("  claim_commitment: %s  (output commitment posted on-chain)\n", claimCommitment.Decimal())
	fmt.Printf("  proof bytes:      %d\n", len(result.RawProofBytes))
	fmt.Printf("  public inputs:    %v\n", result.PublicInputs)
	fmt.Printf("  prove time:       %s\n", result.Timing)
}

func loadWallet() (*wallet.Wallet, error) {
	store, err := wallet.NewFileStore(walletPath())
	if err != nil {
		return nil, fmt.Errorf("open wallet store: %w", err)
	}
	return wallet.Load(context.Background(), "default", store)
}
