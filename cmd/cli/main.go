package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	backupsdk "github.com/walletport/backup-sdk"
	"github.com/walletport/backup-sdk/backup"
	"github.com/walletport/backup-sdk/internal/config"
	"github.com/walletport/backup-sdk/store"
	"github.com/walletport/backup-sdk/types"
	"golang.org/x/term"
)

const (
	DatadirEnvVar   = "BACKUP_DATADIR"
	StoreTypeEnvVar = "BACKUP_STORE_TYPE"
)

var (
	Version string
	cfg     *config.Config
)

func main() {
	app := cli.NewApp()
	app.Version = Version
	app.Name = "backup"
	app.Usage = "restore wallet backups into a local wallet store"
	app.Commands = append(
		app.Commands,
		&importCommand,
		&detectCommand,
		&showCommand,
		&versionCommand,
	)
	app.Flags = []cli.Flag{datadirFlag, storeTypeFlag, verboseFlag}
	app.Before = func(ctx *cli.Context) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if ctx.IsSet(datadirFlag.Name) {
			cfg.Datadir = ctx.String(datadirFlag.Name)
		}
		if ctx.IsSet(storeTypeFlag.Name) {
			cfg.StoreType = ctx.String(storeTypeFlag.Name)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log.SetLevel(cfg.Level())
		if ctx.Bool(verboseFlag.Name) {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}

var (
	datadirFlag = &cli.StringFlag{
		Name:    "datadir",
		Usage:   "Specify the data directory",
		EnvVars: []string{DatadirEnvVar},
	}
	storeTypeFlag = &cli.StringFlag{
		Name:    "store",
		Usage:   "store backend: inmemory, kv or sql",
		EnvVars: []string{StoreTypeEnvVar},
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logs",
	}
	fileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "path of the backup file",
		Required: true,
	}
	passwordFlag = &cli.StringFlag{
		Name:  "password",
		Usage: "password of an encrypted backup, prompted when missing",
	}
	chainIDFlag = &cli.StringFlag{
		Name:  "default-chain-id",
		Usage: "chain assumed by backups that do not name one",
	}
	attemptsFlag = &cli.IntFlag{
		Name:  "attempts",
		Usage: "how many times to ask for the password",
		Value: 3,
	}
)

var (
	importCommand = cli.Command{
		Name:   "import",
		Usage:  "Import a backup file into the wallet store",
		Flags:  []cli.Flag{fileFlag, passwordFlag, chainIDFlag, attemptsFlag},
		Action: importBackup,
	}
	detectCommand = cli.Command{
		Name:   "detect",
		Usage:  "Print the format of a backup file",
		Flags:  []cli.Flag{fileFlag},
		Action: detect,
	}
	showCommand = cli.Command{
		Name:   "show",
		Usage:  "Print what the wallet store holds",
		Action: show,
	}
	versionCommand = cli.Command{
		Name:  "version",
		Usage: "Display version information",
		Action: func(ctx *cli.Context) error {
			fmt.Printf("backup CLI version: %s\n", Version)
			return nil
		},
	}
)

func importBackup(ctx *cli.Context) error {
	svc, err := openStore()
	if err != nil {
		return err
	}
	defer svc.Close()

	defaultChainID := cfg.DefaultChainID
	if ctx.IsSet(chainIDFlag.Name) {
		defaultChainID = ctx.String(chainIDFlag.Name)
	}

	importer, err := backupsdk.NewImporter(
		svc,
		backupsdk.WithPasswordPrompt(&terminalPrompt{password: ctx.String(passwordFlag.Name)}),
		backupsdk.WithMaxPasswordAttempts(ctx.Int(attemptsFlag.Name)),
		backupsdk.WithUnlockDelay(cfg.UnlockDelay),
		backupsdk.WithKeyWorkers(cfg.KeyWorkers),
		backupsdk.WithDefaultChainID(defaultChainID),
		backupsdk.WithStateListener(func(state backupsdk.State) {
			log.Debugf("import state: %s", state)
		}),
	)
	if err != nil {
		return err
	}

	report, err := importer.ImportFile(ctx.Context, backup.FileSource{}, ctx.String(fileFlag.Name))
	if err != nil {
		if backupsdk.IsWrongPassword(err) {
			return fmt.Errorf("wrong password")
		}
		return err
	}
	return printJSON(reportView(report))
}

func detect(ctx *cli.Context) error {
	raw, err := backup.FileSource{}.ReadBackup(ctx.Context, ctx.String(fileFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"format": backup.Detect(raw).String(),
	})
}

func show(ctx *cli.Context) error {
	svc, err := openStore()
	if err != nil {
		return err
	}
	defer svc.Close()

	networks, err := svc.NetworkStore().GetNetworks(ctx.Context)
	if err != nil {
		return err
	}
	wallets, err := svc.WalletStore().GetWallets(ctx.Context)
	if err != nil {
		return err
	}
	active, err := svc.WalletStore().GetActiveWallet(ctx.Context)
	if err != nil {
		return err
	}
	keys, err := svc.KeyStore().GetKeys(ctx.Context)
	if err != nil {
		return err
	}
	settings, err := svc.SettingsStore().GetSettings(ctx.Context)
	if err != nil {
		return err
	}

	// Locked private keys are never printed.
	keyViews := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		keyViews = append(keyViews, map[string]any{
			"pubkey":   k.PublicKey,
			"path":     k.Path,
			"hardware": k.IsHardware(),
		})
	}

	return printJSON(map[string]any{
		"networks": networks,
		"wallets":  wallets,
		"active":   active,
		"keys":     keyViews,
		"settings": settings,
	})
}

func openStore() (types.Store, error) {
	return store.NewStore(store.Config{
		StoreType: cfg.StoreType,
		BaseDir:   cfg.Datadir,
	})
}

// terminalPrompt uses the --password flag for the first attempt and asks on
// the terminal afterwards.
type terminalPrompt struct {
	password string
}

func (p *terminalPrompt) Password(_ context.Context, attempt int, lastErr error) (string, error) {
	if attempt == 1 && p.password != "" {
		return p.password, nil
	}
	if lastErr != nil {
		if backupsdk.IsWrongPassword(lastErr) {
			fmt.Println("wrong password, try again")
		} else {
			fmt.Printf("import failed: %s\n", lastErr)
		}
	}
	password, err := readPassword()
	if err != nil {
		return "", err
	}
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}
	return string(password), nil
}

func readPassword() ([]byte, error) {
	fmt.Print("unlock your backup with password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return nil, err
	}
	return password, nil
}

func reportView(report *types.Report) map[string]any {
	skipped := make([]string, 0, len(report.Skipped))
	for _, s := range report.Skipped {
		skipped = append(skipped, s.String())
	}
	return map[string]any{
		"run":           report.RunID,
		"format":        report.Format.String(),
		"networks":      report.Networks,
		"wallets":       report.Wallets,
		"hardware_keys": report.HardwareKeys,
		"software_keys": report.SoftwareKeys,
		"storage":       report.StorageRestored,
		"settings":      report.SettingsImported,
		"blockchains":   report.Blockchains,
		"active":        report.Active,
		"skipped":       skipped,
	}
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}
