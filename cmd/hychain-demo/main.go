// Command hychain-demo exercises chain.Pipeline end to end: building a
// genesis block, appending follow-on blocks, and printing the resulting
// ledger. It is illustrative only — the library has no supported CLI
// surface; persistence beyond the in-memory reference store is likewise
// out of scope.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/outofthegrid-st/hy-chain/chain"
	"github.com/outofthegrid-st/hy-chain/keyobj"
	"github.com/outofthegrid-st/hy-chain/storage"
)

// note is the demo's payload type: a single free-text note per block.
type note struct {
	Text string `json:"text"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "genesis":
		return runGenesis(rest, stdout, stderr)
	case "append":
		return runAppend(rest, stdout, stderr)
	case "show":
		return runShow(rest, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "hychain-demo — exercises the block assembly pipeline")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  hychain-demo genesis [-note TEXT]")
	fmt.Fprintln(w, "  hychain-demo append  [-note TEXT] [-blocks N]")
	fmt.Fprintln(w, "  hychain-demo show     [-blocks N]")
}

// newDemoPipeline constructs a fresh in-memory pipeline signed with a
// one-shot generated key. Every invocation of this process starts an empty
// ledger — there is no cross-run persistence.
func newDemoPipeline() (*chain.Pipeline[note], storage.Storage[*chain.Block[note]], error) {
	key, err := keyobj.GenerateSymmetricKey(keyobj.CHACHA20Alg, nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("generate demo signing key: %w", err)
	}
	store := storage.NewInMemory[*chain.Block[note]]()
	return chain.NewPipeline[note](store, key), store, nil
}

// seedChain builds a genesis block and n-1 follow-on blocks, each carrying
// text as its note payload, returning the full chain in sequence order.
func seedChain(p *chain.Pipeline[note], token *chain.CancelToken, text string, n int) ([]*chain.Block[note], error) {
	if n < 1 {
		n = 1
	}
	genesis, err := p.BuildGenesisBlock(token, chain.Transaction[note]{Payload: note{Text: text}, Sequence: 0}, nil)
	if err != nil {
		return nil, fmt.Errorf("build genesis block: %w", err)
	}
	blocks := []*chain.Block[note]{genesis}
	prev := genesis
	for i := 1; i < n; i++ {
		tx := chain.Transaction[note]{Payload: note{Text: fmt.Sprintf("%s (#%d)", text, i)}, Sequence: uint32(i)}
		next, err := p.BuildNextBlock(token, prev, tx, nil)
		if err != nil {
			return nil, fmt.Errorf("build block %d: %w", i, err)
		}
		blocks = append(blocks, next)
		prev = next
	}
	return blocks, nil
}

func runGenesis(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("genesis", flag.ContinueOnError)
	fs.SetOutput(stderr)
	text := fs.String("note", "genesis", "note text for the genesis block")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, store, err := newDemoPipeline()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer store.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	blocks, err := seedChain(p, chain.NewCancelToken(ctx), *text, 1)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return printBlocks(stdout, blocks)
}

func runAppend(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("append", flag.ContinueOnError)
	fs.SetOutput(stderr)
	text := fs.String("note", "entry", "note text for the appended block(s)")
	count := fs.Int("blocks", 2, "total blocks to build, including genesis")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, store, err := newDemoPipeline()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer store.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	blocks, err := seedChain(p, chain.NewCancelToken(ctx), *text, *count)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return printBlocks(stdout, blocks[len(blocks)-1:])
}

func runShow(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	count := fs.Int("blocks", 3, "total blocks to build, including genesis")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, store, err := newDemoPipeline()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer store.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := seedChain(p, chain.NewCancelToken(ctx), "entry", *count); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	all, err := store.GetAllBlocks()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return printBlocks(stdout, all)
}

// blockView is the demo's plain-data projection of a chain.Block for JSON
// output — the real block holds disposable HashEntity handles, not bytes.
type blockView struct {
	ID            string `json:"id"`
	PublicBlockID string `json:"publicBlockId"`
	Sequence      uint32 `json:"sequence"`
	Note          string `json:"note"`
	PreviousHash  string `json:"previousHash"`
	MerkleRoot    string `json:"merkleRoot"`
	BlockSig      string `json:"blockSignature"`
}

func printBlocks(w io.Writer, blocks []*chain.Block[note]) int {
	views := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		prevHash, err := b.PreviousHash.Hex()
		if err != nil {
			fmt.Fprintln(w, err)
			return 1
		}
		merkleRoot, err := b.Headers.MerkleRoot.Hex()
		if err != nil {
			fmt.Fprintln(w, err)
			return 1
		}
		blockSig, err := b.BlockSignature.Hex()
		if err != nil {
			fmt.Fprintln(w, err)
			return 1
		}
		views = append(views, blockView{
			ID:            b.ID,
			PublicBlockID: b.PublicBlockID,
			Sequence:      b.Sequence,
			Note:          b.Transaction.Payload.Text,
			PreviousHash:  prevHash,
			MerkleRoot:    merkleRoot,
			BlockSig:      blockSig,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(views); err != nil {
		fmt.Fprintln(w, err)
		return 1
	}
	return 0
}
