// Command offcli is a flag-based command-line client for the OFF storage
// core, ported in style from the teacher's cmd/noisefs/main.go: a flat set
// of subcommands dispatched on os.Args[1], each parsing its own flag.FlagSet.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Digital-Defiance/brightchain-off/internal/cliutil"
	"github.com/Digital-Defiance/brightchain-off/internal/config"
	"github.com/Digital-Defiance/brightchain-off/internal/humansize"
	"github.com/Digital-Defiance/brightchain-off/internal/logging"
	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/cbl"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/crypto"
	"github.com/Digital-Defiance/brightchain-off/pkg/magnet"
	"github.com/Digital-Defiance/brightchain-off/pkg/reconstruct"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/diskfs"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/memdisk"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "put":
		cmdPut(os.Args[2:])
	case "get":
		cmdGet(os.Args[2:])
	case "brighten":
		cmdBrighten(os.Args[2:])
	case "cbl-encode":
		cmdCBLEncode(os.Args[2:])
	case "cbl-decode":
		cmdCBLDecode(os.Args[2:])
	case "cat":
		cmdCat(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `offcli <subcommand> [flags]

Subcommands:
  put        store a file's bytes as a single Raw block
  get        fetch a block by its hex checksum
  brighten   XOR a stored block against n peers and store the result
  cbl-encode sign and store a CBL for a list of tuple addresses
  cbl-decode parse and verify a stored CBL, printing its address list
  cat        reconstruct a file from a CBL block`)
}

func openStore(cfg *config.Config) (store.Backend, error) {
	switch cfg.Store.Backend {
	case "diskfs":
		return diskfs.New(cfg.Store.Root)
	default:
		return memdisk.New(), nil
	}
}

func loadConfig(configFile string) *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(cfg *config.Config) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.InfoLevel
	}
	format := logging.TextFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	return logging.New(logging.Config{Level: level, Format: format, Output: os.Stderr}).WithComponent("offcli")
}

func cmdPut(args []string) {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	configFile := fs.String("config", "", "configuration file path")
	input := fs.String("file", "", "file whose bytes become the block payload")
	poolID := fs.String("pool", "", "pool namespace to tag the block with")
	asJSON := fs.Bool("json", false, "print results as JSON")
	fs.Parse(args)
	jsonOutput = *asJSON

	if *input == "" {
		fmt.Fprintln(os.Stderr, "put: -file is required")
		os.Exit(1)
	}

	cfg := loadConfig(*configFile)
	logger := newLogger(cfg)
	backend, err := openStore(cfg)
	fatalIf(err)

	data, err := os.ReadFile(*input)
	fatalIf(err)

	size, err := blocks.NextLargest(len(data))
	fatalIf(err)

	opts := []blocks.Option{}
	if *poolID != "" {
		opts = append(opts, blocks.WithPool(*poolID))
	}
	b, err := blocks.NewRaw(size, data, true, opts...)
	fatalIf(err)

	ctx := context.Background()
	err = backend.Put(ctx, b, store.PutOptions{Durability: store.Durable})
	fatalIf(err)

	logger.Info("stored block", map[string]interface{}{"id": b.ID().Hex(), "size": size.String(), "bytes": humansize.Format(int64(len(data)))})
	if jsonOutput {
		cliutil.PrintJSONSuccess(map[string]interface{}{"id": b.ID().Hex(), "size": size.String()})
		return
	}
	fmt.Println(b.ID().Hex())
}

func cmdGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	configFile := fs.String("config", "", "configuration file path")
	idHex := fs.String("id", "", "hex checksum of the block to fetch")
	output := fs.String("output", "", "output file path (default: stdout)")
	fs.Parse(args)

	id := parseChecksum(*idHex)
	cfg := loadConfig(*configFile)
	backend, err := openStore(cfg)
	fatalIf(err)

	ctx := context.Background()
	b, err := backend.Get(ctx, id)
	fatalIf(err)

	data, err := b.Data()
	fatalIf(err)

	writeOutput(*output, data)
}

func cmdBrighten(args []string) {
	fs := flag.NewFlagSet("brighten", flag.ExitOnError)
	configFile := fs.String("config", "", "configuration file path")
	idHex := fs.String("id", "", "hex checksum of the source block")
	n := fs.Int("n", 2, "number of whitener peers to XOR against")
	seed := fs.Int64("seed", 0, "deterministic peer-selection seed (0 = unseeded order)")
	fs.Parse(args)

	sourceID := parseChecksum(*idHex)
	cfg := loadConfig(*configFile)
	backend, err := openStore(cfg)
	fatalIf(err)

	ctx := context.Background()
	result, err := store.Brighten(ctx, backend, sourceID, *n, *seed)
	fatalIf(err)

	fmt.Printf("brightened=%s source=%s\n", result.BrightenedKey.Hex(), result.SourceKey.Hex())
	for _, k := range result.RandomKeys {
		fmt.Println("peer=" + k.Hex())
	}
}

func cmdCBLEncode(args []string) {
	fs := flag.NewFlagSet("cbl-encode", flag.ExitOnError)
	configFile := fs.String("config", "", "configuration file path")
	tupleSize := fs.Int("tuple-size", 3, "tuple width shared by every member group")
	originalLength := fs.Int64("original-length", 0, "total plaintext byte length the addresses reconstruct to")
	size := fs.String("size", "Small", "block size label for the CBL block itself")
	poolID := fs.String("pool", "", "pool namespace to tag the CBL with")
	addrFile := fs.String("addresses", "", "file of newline-separated hex addresses, tuple-major order")
	fileName := fs.String("name", "", "file name to embed (produces an ExtendedCBL when set)")
	mimeType := fs.String("mime", "", "mime type to embed (produces an ExtendedCBL when set)")
	fs.Parse(args)

	if *addrFile == "" {
		fmt.Fprintln(os.Stderr, "cbl-encode: -addresses is required")
		os.Exit(1)
	}

	cfg := loadConfig(*configFile)
	backend, err := openStore(cfg)
	fatalIf(err)

	addresses := readAddresses(*addrFile)
	blockSize := parseBlockSize(*size)
	signer, err := crypto.GenerateSigner()
	fatalIf(err)

	var b *blocks.Block
	if *fileName != "" || *mimeType != "" {
		b, err = cbl.EncodeExtended(cbl.ExtendedEncodeParams{
			EncodeParams: cbl.EncodeParams{
				Signer:             signer,
				DateCreated:        time.Now(),
				TupleSize:          uint8(*tupleSize),
				OriginalDataLength: uint64(*originalLength),
				Addresses:          addresses,
				Size:               blockSize,
				PoolID:             *poolID,
			},
			FileName: *fileName,
			MimeType: *mimeType,
		})
	} else {
		b, err = cbl.Encode(cbl.EncodeParams{
			Signer:             signer,
			DateCreated:        time.Now(),
			TupleSize:          uint8(*tupleSize),
			OriginalDataLength: uint64(*originalLength),
			Addresses:          addresses,
			Size:               blockSize,
			PoolID:             *poolID,
		})
	}
	fatalIf(err)

	ctx := context.Background()
	fatalIf(backend.Put(ctx, b, store.PutOptions{Durability: store.Durable}))

	creatorID := crypto.DeriveCreatorID(signer.PublicKey())
	fmt.Println("cbl=" + b.ID().Hex())
	fmt.Println("creator_id=" + hex.EncodeToString(creatorID[:]))
	fmt.Println("creator_public_key=" + hex.EncodeToString(signer.PublicKey()))
	fmt.Println(magnet.Encode(b.ID(), *fileName, uint64(*originalLength)))
}

func cmdCBLDecode(args []string) {
	fs := flag.NewFlagSet("cbl-decode", flag.ExitOnError)
	configFile := fs.String("config", "", "configuration file path")
	idHex := fs.String("id", "", "hex checksum of the CBL block")
	creatorIDHex := fs.String("creator-id", "", "hex creator id from cbl-encode's output")
	publicKeyHex := fs.String("public-key", "", "hex Ed25519 public key matching creator-id")
	extended := fs.Bool("extended", false, "decode as an ExtendedCBL")
	fs.Parse(args)

	cfg := loadConfig(*configFile)
	backend, err := openStore(cfg)
	fatalIf(err)

	resolver := resolverFor(*creatorIDHex, *publicKeyHex)

	ctx := context.Background()
	b, err := backend.Get(ctx, parseChecksum(*idHex))
	fatalIf(err)

	if *extended {
		decoded, err := cbl.DecodeExtended(b, resolver)
		fatalIf(err)
		fmt.Printf("fileName=%s mimeType=%s originalLength=%d tupleSize=%d\n",
			decoded.Fields.FileName, decoded.Fields.MimeType, decoded.Fields.OriginalDataLength, decoded.Fields.TupleSize)
		printAddresses(decoded.Addresses)
		return
	}

	decoded, err := cbl.Decode(b, resolver)
	fatalIf(err)
	fmt.Printf("originalLength=%d tupleSize=%d\n", decoded.Fields.OriginalDataLength, decoded.Fields.TupleSize)
	printAddresses(decoded.Addresses)
}

func cmdCat(args []string) {
	fs := flag.NewFlagSet("cat", flag.ExitOnError)
	configFile := fs.String("config", "", "configuration file path")
	idHex := fs.String("id", "", "hex checksum of the CBL block")
	creatorIDHex := fs.String("creator-id", "", "hex creator id from cbl-encode's output")
	publicKeyHex := fs.String("public-key", "", "hex Ed25519 public key matching creator-id")
	output := fs.String("output", "", "output file path (default: stdout)")
	fs.Parse(args)

	cfg := loadConfig(*configFile)
	backend, err := openStore(cfg)
	fatalIf(err)

	resolver := resolverFor(*creatorIDHex, *publicKeyHex)

	ctx := context.Background()
	cblBlock, err := backend.Get(ctx, parseChecksum(*idHex))
	fatalIf(err)

	get := func(ctx context.Context, id checksum.Checksum) (*blocks.Block, error) {
		return backend.Get(ctx, id)
	}

	stream, err := reconstruct.Open(ctx, cblBlock, get, reconstruct.Options{Resolver: resolver})
	fatalIf(err)

	data, err := reconstruct.ReadAll(stream)
	fatalIf(err)

	writeOutput(*output, data)
}

func resolverFor(creatorIDHex, publicKeyHex string) crypto.IdentityResolver {
	if creatorIDHex == "" || publicKeyHex == "" {
		fmt.Fprintln(os.Stderr, "both -creator-id and -public-key are required")
		os.Exit(1)
	}
	creatorIDBytes, err := hex.DecodeString(creatorIDHex)
	fatalIf(err)
	if len(creatorIDBytes) != 16 {
		fmt.Fprintln(os.Stderr, "creator-id must decode to 16 bytes")
		os.Exit(1)
	}
	publicKeyBytes, err := hex.DecodeString(publicKeyHex)
	fatalIf(err)
	if len(publicKeyBytes) != ed25519.PublicKeySize {
		fmt.Fprintln(os.Stderr, "public-key must decode to an Ed25519 public key")
		os.Exit(1)
	}
	var creatorID [16]byte
	copy(creatorID[:], creatorIDBytes)
	resolver := crypto.StaticResolver{}
	resolver[creatorID] = ed25519.PublicKey(publicKeyBytes)
	return resolver
}

func readAddresses(path string) []checksum.Checksum {
	data, err := os.ReadFile(path)
	fatalIf(err)
	var out []checksum.Checksum
	start := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := string(data[start:i])
			start = i + 1
			if line == "" || line == "\r" {
				continue
			}
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			id, err := checksum.FromHex(line)
			fatalIf(err)
			out = append(out, id)
		}
	}
	return out
}

func printAddresses(addresses []checksum.Checksum) {
	for _, a := range addresses {
		fmt.Println(a.Hex())
	}
}

func parseChecksum(s string) checksum.Checksum {
	if s == "" {
		fmt.Fprintln(os.Stderr, "-id is required")
		os.Exit(1)
	}
	id, err := checksum.FromHex(s)
	fatalIf(err)
	return id
}

func parseBlockSize(label string) blocks.BlockSize {
	switch label {
	case "Message":
		return blocks.Message
	case "Tiny":
		return blocks.Tiny
	case "Small":
		return blocks.Small
	case "Medium":
		return blocks.Medium
	case "Large":
		return blocks.Large
	case "Huge":
		return blocks.Huge
	default:
		if n, err := strconv.Atoi(label); err == nil {
			size, err := blocks.NextLargest(n)
			fatalIf(err)
			return size
		}
		fmt.Fprintf(os.Stderr, "unknown block size: %s\n", label)
		os.Exit(1)
		return blocks.UnknownSize
	}
}

func writeOutput(path string, data []byte) {
	if path == "" {
		os.Stdout.Write(data)
		return
	}
	fatalIf(os.WriteFile(path, data, 0o644))
}

// jsonOutput is set by the put subcommand's -json flag (the only
// subcommand that defines one); fatalIf and put's success path consult it
// to choose plain-text or cliutil.Result output.
var jsonOutput bool

func fatalIf(err error) {
	if err != nil {
		if jsonOutput {
			cliutil.PrintJSONError(err)
		} else {
			fmt.Fprintln(os.Stderr, cliutil.FormatError(err))
		}
		os.Exit(1)
	}
}
