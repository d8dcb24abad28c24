// Package drand is the drand-verify command line tool. It checks drand beacons
// against the public key of their chain, one at a time or a whole database.
package drand

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/drand/drand-verify/common"
	chain2 "github.com/drand/drand-verify/common/chain"
	"github.com/drand/drand-verify/common/log"
	"github.com/drand/drand-verify/crypto"
	"github.com/drand/drand-verify/internal/chain"
	"github.com/drand/drand-verify/internal/chain/beacon"
	"github.com/drand/drand-verify/internal/chain/boltdb"
	"github.com/drand/drand-verify/internal/chain/memdb"
	"github.com/drand/drand-verify/internal/metrics"
)

var SetVersionPrinter sync.Once

// boltOpenTimeout bounds the wait for the lock of a database held by a running node.
const boltOpenTimeout = 5 * time.Second

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Usage:   "If set, verbosity is at the debug level",
	EnvVars: []string{"DRAND_VERBOSE"},
}

var jsonLogsFlag = &cli.BoolFlag{
	Name:    "json-logs",
	Usage:   "Set the logs output as json format",
	EnvVars: []string{"DRAND_JSON_LOGS"},
}

var jsonFlag = &cli.BoolFlag{
	Name:    "json",
	Usage:   "Set the output as json format",
	EnvVars: []string{"DRAND_JSON"},
}

var chainInfoFlag = &cli.StringFlag{
	Name: "chain-info",
	Usage: "Path to the chain information of the beacons, as served by the /info endpoint of a drand node (JSON), " +
		"or written in TOML when the file has a .toml extension.",
	Required: true,
	EnvVars:  []string{"DRAND_CHAIN_INFO"},
}

var chainHashFlag = &cli.StringFlag{
	Name:  "chain-hash",
	Usage: "The expected hash of the chain, in hexadecimal. The command fails when the chain information does not match it.",
}

var beaconFlag = &cli.StringFlag{
	Name:  "beacon",
	Usage: "Path to a beacon in JSON, as served by the /public endpoints of a drand node.",
}

var roundFlag = &cli.Uint64Flag{
	Name:  "round",
	Usage: "The round of the beacon.",
}

var signatureFlag = &cli.StringFlag{
	Name:  "signature",
	Usage: "The signature of the beacon, in hexadecimal.",
}

var prevSigFlag = &cli.StringFlag{
	Name:  "previous-signature",
	Usage: "The signature of the previous round, in hexadecimal. Only chained schemes sign it.",
}

var schemeFlag = &cli.StringFlag{
	Name:  "scheme",
	Usage: fmt.Sprintf("The scheme of the chain, one of %s.", strings.Join(crypto.ListSchemes(), ", ")),
	Value: crypto.DefaultSchemeID,
}

var dbFlag = &cli.StringFlag{
	Name:  "db",
	Usage: "Path to the bolt database of a drand node, usually <folder>/multibeacon/<id>/db/" + boltdb.BoltFileName,
}

var beaconsFlag = &cli.StringFlag{
	Name:  "beacons",
	Usage: "Path to a JSON array of beacons, as served by the /public endpoints of a drand node. Replaces --db.",
}

var fromFlag = &cli.Uint64Flag{
	Name:  "from",
	Usage: "Round from which the check starts.",
	Value: 1,
}

var upToFlag = &cli.Uint64Flag{
	Name:  "upto",
	Usage: "Round up to which the check runs, the last stored round by default.",
}

var workersFlag = &cli.IntFlag{
	Name:  "workers",
	Usage: "Number of rounds verified concurrently, the number of CPUs by default.",
}

var metricsOutFlag = &cli.StringFlag{
	Name:  "metrics-out",
	Usage: "Write the verification metrics to this file, in the format of the textfile collector of the node exporter.",
}

var appCommands = []*cli.Command{
	{
		Name:  "verify",
		Usage: "Verify a single beacon against the public key of its chain.",
		Flags: toArray(chainInfoFlag, beaconFlag, roundFlag, signatureFlag, prevSigFlag,
			verboseFlag, jsonLogsFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("verifyCmd")
			return verifyCmd(c, l)
		},
	},
	{
		Name:  "check",
		Usage: "Verify the beacons stored in the database of a drand node.",
		Flags: toArray(chainInfoFlag, dbFlag, beaconsFlag, fromFlag, upToFlag, workersFlag, metricsOutFlag,
			verboseFlag, jsonLogsFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("checkCmd")
			return checkCmd(c, l)
		},
	},
	{
		Name:  "digest",
		Usage: "Print the message signed for a round, in hexadecimal.",
		Flags: toArray(roundFlag, prevSigFlag, schemeFlag, verboseFlag, jsonLogsFlag),
		Action: func(c *cli.Context) error {
			return digestCmd(c)
		},
	},
	{
		Name:  "info",
		Usage: "Print the chain information and its hash.",
		Flags: toArray(chainInfoFlag, chainHashFlag, jsonFlag, verboseFlag, jsonLogsFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("infoCmd")
			return infoCmd(c, l)
		},
	},
}

// CLI runs the drand-verify app
func CLI() *cli.App {
	version := common.GetAppVersion()

	app := cli.NewApp()
	app.Name = "drand-verify"

	SetVersionPrinter.Do(func() {
		cli.VersionPrinter = func(c *cli.Context) {
			fmt.Fprintf(c.App.Writer, "drand-verify %s\n", common.BuildInfo())
		}
	})

	app.ExitErrHandler = func(context *cli.Context, err error) {
		// override to prevent default behavior of calling OS.exit(1),
		// when tests expect to be able to run multiple commands.
	}
	app.Version = version.String()
	app.Usage = "verification of drand randomness beacons"
	// we need to copy the underlying commands to avoid races, cli sadly doesn't support concurrent executions well
	appComm := make([]*cli.Command, len(appCommands))
	for i, p := range appCommands {
		v := *p
		appComm[i] = &v
	}
	app.Commands = appComm
	verbFlag := *verboseFlag
	logsFlag := *jsonLogsFlag
	app.Flags = toArray(&verbFlag, &logsFlag)
	return app
}

func verifyCmd(c *cli.Context, l log.Logger) error {
	info, err := loadChainInfo(c)
	if err != nil {
		return err
	}
	verifier, err := info.Verifier()
	if err != nil {
		return err
	}

	b, err := beaconFromFlags(c)
	if err != nil {
		return err
	}

	l.Debugw("Verifying beacon", "chain", info.HashString(), "scheme", info.GetSchemeName(), "beacon", b.String())
	if err := verifier.VerifyBeacon(b); err != nil {
		l.Debugw("invalid_beacon", "round", b.Round, "err", err)
		return err
	}

	fmt.Fprintf(c.App.Writer, "round %d is valid\n", b.Round)
	fmt.Fprintf(c.App.Writer, "randomness: %x\n", b.Randomness())
	return nil
}

func beaconFromFlags(c *cli.Context) (*common.Beacon, error) {
	if c.IsSet(beaconFlag.Name) {
		if c.IsSet(signatureFlag.Name) || c.IsSet(roundFlag.Name) {
			return nil, fmt.Errorf("--%s can't be used with --%s or --%s", beaconFlag.Name, roundFlag.Name, signatureFlag.Name)
		}
		buff, err := os.ReadFile(c.String(beaconFlag.Name))
		if err != nil {
			return nil, fmt.Errorf("reading beacon: %w", err)
		}
		return common.ParseBeacon(buff)
	}

	if !c.IsSet(roundFlag.Name) || !c.IsSet(signatureFlag.Name) {
		return nil, fmt.Errorf("either --%s, or --%s and --%s are required", beaconFlag.Name, roundFlag.Name, signatureFlag.Name)
	}
	sig, err := decodeHexFlag(c, signatureFlag)
	if err != nil {
		return nil, err
	}
	prev, err := decodeHexFlag(c, prevSigFlag)
	if err != nil {
		return nil, err
	}
	return &common.Beacon{
		Round:       c.Uint64(roundFlag.Name),
		Signature:   sig,
		PreviousSig: prev,
	}, nil
}

func checkCmd(c *cli.Context, l log.Logger) error {
	defer l.Infow("Finished check")

	info, err := loadChainInfo(c)
	if err != nil {
		return err
	}
	verifier, err := info.Verifier()
	if err != nil {
		return err
	}

	store, dbPath, err := openStore(c, l, verifier.Scheme().IsChained())
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []beacon.CheckerOption{
		beacon.WithWorkers(c.Int(workersFlag.Name)),
		beacon.WithInfo(info),
	}

	var reg *prometheus.Registry
	if c.IsSet(metricsOutFlag.Name) {
		reg = prometheus.NewRegistry()
		m, err := metrics.NewVerification(reg)
		if err != nil {
			return err
		}
		opts = append(opts, beacon.WithMetrics(m))
	}

	checker := beacon.NewChecker(l, store, verifier, opts...)
	report, err := checker.CheckPastBeacons(c.Context, c.Uint64(fromFlag.Name), c.Uint64(upToFlag.Name), func(r, u uint64) {
		if r%common.LogsToSkip == 0 {
			l.Debugw("Checked", "round", r, "upTo", u)
		}
	})
	if err != nil {
		return fmt.Errorf("error checking beacons of %s: %w", dbPath, err)
	}

	if reg != nil {
		if err := metrics.WriteTextfile(c.String(metricsOutFlag.Name), reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	fmt.Fprintf(c.App.Writer, "checked rounds %d to %d of chain %s: %d checked, %d valid, %d faulty\n",
		report.From, report.UpTo, info.HashString(), report.Checked, report.Valid, len(report.Faulty))
	if len(report.Faulty) == 0 {
		return nil
	}

	// each error names its round
	for _, err := range report.Errors.Errors {
		fmt.Fprintf(c.App.Writer, "faulty: %v\n", err)
	}
	return fmt.Errorf("%d faulty beacons in %s", len(report.Faulty), dbPath)
}

// openStore opens the beacons to check, named by --db or --beacons.
func openStore(c *cli.Context, l log.Logger, chained bool) (chain.Store, string, error) {
	switch {
	case c.IsSet(dbFlag.Name) && c.IsSet(beaconsFlag.Name):
		return nil, "", fmt.Errorf("--%s can't be used with --%s", dbFlag.Name, beaconsFlag.Name)
	case c.IsSet(beaconsFlag.Name):
		path := c.String(beaconsFlag.Name)
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("opening beacons: %w", err)
		}
		defer f.Close()
		store, err := memdb.Load(c.Context, f, chained)
		if err != nil {
			return nil, "", err
		}
		return store, path, nil
	case c.IsSet(dbFlag.Name):
		path := c.String(dbFlag.Name)
		store, err := boltdb.NewBoltStore(c.Context, l, path,
			&bolt.Options{ReadOnly: true, Timeout: boltOpenTimeout}, chained)
		if err != nil {
			return nil, "", fmt.Errorf("unable to open beacon database: %w", err)
		}
		return store, path, nil
	default:
		return nil, "", fmt.Errorf("either --%s or --%s is required", dbFlag.Name, beaconsFlag.Name)
	}
}

func digestCmd(c *cli.Context) error {
	if !c.IsSet(roundFlag.Name) {
		return fmt.Errorf("--%s is required", roundFlag.Name)
	}
	sch, err := crypto.SchemeFromName(c.String(schemeFlag.Name))
	if err != nil {
		return err
	}
	prev, err := decodeHexFlag(c, prevSigFlag)
	if err != nil {
		return err
	}
	if !sch.IsChained() && len(prev) > 0 {
		return fmt.Errorf("scheme %s: %w", sch.ID(), crypto.ErrUnexpectedPreviousSignature)
	}

	fmt.Fprintf(c.App.Writer, "%x\n", crypto.DigestBeacon(c.Uint64(roundFlag.Name), prev, sch))
	return nil
}

func infoCmd(c *cli.Context, l log.Logger) error {
	info, err := loadChainInfo(c)
	if err != nil {
		return err
	}

	if c.IsSet(chainHashFlag.Name) {
		expected, err := decodeHexFlag(c, chainHashFlag)
		if err != nil {
			return err
		}
		if err := info.VerifyHash(expected); err != nil {
			return err
		}
		l.Debugw("Chain hash verified", "hash", info.HashString())
	}

	if c.Bool(jsonFlag.Name) {
		return info.ToJSON(c.App.Writer)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "chain hash:   %s\n", info.HashString())
	fmt.Fprintf(w, "beacon id:    %s\n", info.ID)
	fmt.Fprintf(w, "scheme:       %s\n", info.GetSchemeName())
	fmt.Fprintf(w, "public key:   %x\n", info.PublicKey)
	fmt.Fprintf(w, "period:       %s\n", info.Period)
	fmt.Fprintf(w, "genesis time: %d (%s)\n", info.GenesisTime, time.Unix(info.GenesisTime, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "genesis seed: %x\n", info.GenesisSeed)
	fmt.Fprintf(w, "current round: %d\n", info.CurrentRound(time.Now().Unix()))
	return nil
}

func loadChainInfo(c *cli.Context) (*chain2.Info, error) {
	path := c.String(chainInfoFlag.Name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chain info: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return chain2.InfoFromTOML(f)
	}
	return chain2.InfoFromJSON(f)
}

func decodeHexFlag(c *cli.Context, f *cli.StringFlag) ([]byte, error) {
	value := strings.TrimPrefix(c.String(f.Name), "0x")
	if value == "" {
		return nil, nil
	}
	buff, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", f.Name, errors.Join(crypto.ErrMalformedEncoding, err))
	}
	return buff, nil
}

func isVerbose(c *cli.Context) bool {
	return c.IsSet(verboseFlag.Name)
}

func logLevel(c *cli.Context) int {
	if isVerbose(c) {
		return log.DebugLevel
	}

	return log.ErrorLevel
}

func logJSON(c *cli.Context) bool {
	return c.Bool(jsonLogsFlag.Name)
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}
