// Command hlsedit inspects and edits HLS playlists.
//
//	hlsedit [-config file] [-format text|yaml|json] [-level l] command [flags] [file|-]
//
// The commands are:
//
//	inspect    print the structure of the playlist
//	cat        parse the playlist and write it back
//	strip-ads  remove ad markers
//	rebase     resolve locations and URI attributes against -base
//	window     drop leading segments until at most -keep seconds remain
//	urls       list the referenced locations, resolved against -base
//
// The playlist is read from the file, or standard input if there is none
// or it is "-". Edited playlists are written to standard output.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	hls "github.com/as/hlsedit"
)

var errUsage = errors.New("usage: hlsedit [-config file] [-format text|yaml|json] [-level l] inspect|cat|strip-ads|rebase|window|urls [flags] [file|-]")

func main() {
	fs := flag.NewFlagSet("hlsedit", flag.ExitOnError)
	file := fs.String("config", "", "TOML configuration file")
	format := fs.String("format", defaults.Format, "inspect output format: text, yaml or json")
	level := fs.String("level", defaults.Level, "log level")
	fs.Parse(os.Args[1:])

	log.SetHandler(cli.New(os.Stderr))
	conf, err := loadConfig(*file)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			conf.Format = *format
		case "level":
			conf.Level = *level
		}
	})
	if err := conf.validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevelFromString(conf.Level)

	if err := run(conf, fs.Args(), os.Stdin, os.Stdout); err != nil {
		log.WithError(err).Fatal("hlsedit")
	}
}

// run executes the command in args[0] with its flags and input file
func run(conf config, args []string, stdin io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	switch cmd {
	case "rebase", "urls":
		fs.StringVar(&conf.Base, "base", conf.Base, "base URL")
	case "window":
		fs.Float64Var(&conf.Keep, "keep", conf.Keep, "seconds to keep")
	case "inspect", "cat", "strip-ads":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	if err := conf.validate(); err != nil {
		return err
	}

	name := fs.Arg(0)
	p, err := open(name, stdin)
	if err != nil {
		return err
	}
	ctx := log.WithFields(log.Fields{"cmd": cmd, "file": name})
	p.SetLogger(ctx)

	switch cmd {
	case "inspect":
		return summarize(p).write(out, conf.Format)
	case "urls":
		list, err := paths(p, conf.Base)
		if err != nil {
			return fmt.Errorf("urls: %w", err)
		}
		for _, s := range list {
			fmt.Fprintln(out, s)
		}
		return nil
	case "strip-ads":
		n := p.RemoveAdMarkers()
		ctx.WithField("markers", n).Info("stripped")
	case "rebase":
		if conf.Base == "" {
			return fmt.Errorf("rebase: -base is required")
		}
		if err := p.Rebase(conf.Base); err != nil {
			return fmt.Errorf("rebase: %w", err)
		}
	case "window":
		n := p.Trim(conf.Keep)
		ctx.WithFields(log.Fields{"segments": n, "keep": conf.Keep}).Info("trimmed")
	}
	return p.Encode(out)
}

func open(name string, stdin io.Reader) (*hls.Playlist, error) {
	if name == "" || name == "-" {
		return hls.Decode(stdin)
	}
	fd, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return hls.Decode(fd)
}

// paths lists the locations referenced by a master or media playlist
func paths(p *hls.Playlist, base string) ([]string, error) {
	if p.IsMaster() {
		m := hls.Master{}
		if err := m.DecodePlaylist(p); err != nil {
			return nil, err
		}
		return m.Paths(base), nil
	}
	m := hls.Media{}
	if err := m.DecodePlaylist(p); err != nil {
		return nil, err
	}
	return m.Paths(base), nil
}
