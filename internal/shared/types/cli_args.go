package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile string
	ListenAddr string
	Profile    string
	Region     string
}
