// Command dattool is a small, single-shot debugging and demonstration
// harness for the dat engine. It is not a long-running server — it
// just exercises the library the way a host dispatcher would, one
// command per process invocation, persisting the trie to a snapshot
// file between runs.
package main

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dbzou/dattrie"
)

var (
	dbPath  string
	verbose bool
)

func newAlphabet() (*dat.ByteAlphabet, error) {
	a := dat.NewByteAlphabet()
	if err := a.AddRange(0x20, 0x7e); err != nil { // printable ASCII
		return nil, err
	}
	if err := a.AddRange(hashSepByte, hashSepByte); err != nil {
		return nil, err
	}
	return a, nil
}

// hashSepByte mirrors dat's internal hash-field separator so keys
// produced by the hset/hget/... subcommands stay inside the
// configured alphabet range.
const hashSepByte = 0x01

func openTrie(cmd *cobra.Command) (*dat.Trie, error) {
	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.WarnLevel)
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	cfg := dat.DefaultConfig()
	cfg.Logger = &logger
	alphabet, err := newAlphabet()
	if err != nil {
		return nil, err
	}
	t := dat.New(alphabet, cfg)
	if _, err := os.Stat(dbPath); err == nil {
		if err := t.Load(dbPath); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func saveTrie(t *dat.Trie) error {
	return t.Store(dbPath)
}

func registerValueType() {
	// dattool only ever stores strings, so a single gob.Register call
	// at startup covers every snapshot it writes or reads.
	gob.Register("")
}

func main() {
	registerValueType()

	root := &cobra.Command{
		Use:   "dattool",
		Short: "Debug harness for the double-array trie engine",
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "dat.snapshot", "snapshot file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine growth/relocation events")

	root.AddCommand(
		setCmd(), getCmd(), delCmd(), keysCmd(),
		hsetCmd(), hgetCmd(), hdelCmd(), hkeysCmd(), hvalsCmd(), hgetallCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "TSET: store value under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTrie(cmd)
			if err != nil {
				return err
			}
			if _, err := t.Insert([]byte(args[0]), args[1]); err != nil {
				return err
			}
			return saveTrie(t)
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "TGET: fetch the value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTrie(cmd)
			if err != nil {
				return err
			}
			val, ok, err := t.Find([]byte(args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return dat.ErrNotFound
			}
			fmt.Println(val)
			return nil
		},
	}
}

func delCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>...",
		Short: "TDEL: delete any number of keys, printing the count removed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTrie(cmd)
			if err != nil {
				return err
			}
			removed := 0
			for _, k := range args {
				if err := t.Delete([]byte(k)); err == nil {
					removed++
				}
			}
			fmt.Println(removed)
			return saveTrie(t)
		},
	}
}

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <pattern>",
		Short: "TKEYS: enumerate keys matching a pattern ending in '*'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTrie(cmd)
			if err != nil {
				return err
			}
			it, err := t.KeysMatching([]byte(args[0]))
			if err != nil {
				return err
			}
			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()
			for {
				key, _, ok, err := it.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				fmt.Fprintln(w, string(key))
			}
			return nil
		},
	}
}

func hsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hset <key> <field> <value>",
		Short: "THSET: store value under key's field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTrie(cmd)
			if err != nil {
				return err
			}
			flat := dat.ComposeHashKey([]byte(args[0]), []byte(args[1]))
			if _, err := t.Insert(flat, args[2]); err != nil {
				return err
			}
			return saveTrie(t)
		},
	}
}

func hgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hget <key> <field>",
		Short: "THGET: fetch value stored under key's field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTrie(cmd)
			if err != nil {
				return err
			}
			flat := dat.ComposeHashKey([]byte(args[0]), []byte(args[1]))
			val, ok, err := t.Find(flat)
			if err != nil {
				return err
			}
			if !ok {
				return dat.ErrNotFound
			}
			fmt.Println(val)
			return nil
		},
	}
}

func hdelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hdel <key> <field>...",
		Short: "THDEL: delete any number of fields from key, printing the count removed",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTrie(cmd)
			if err != nil {
				return err
			}
			removed := 0
			for _, field := range args[1:] {
				flat := dat.ComposeHashKey([]byte(args[0]), []byte(field))
				if err := t.Delete(flat); err == nil {
					removed++
				}
			}
			fmt.Println(removed)
			return saveTrie(t)
		},
	}
}

func hkeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hkeys <key>",
		Short: "THKEYS: list every field stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return enumerateHash(cmd, args[0], func(field []byte, _ interface{}) {
				fmt.Println(string(field))
			})
		},
	}
}

func hvalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hvals <key>",
		Short: "THVALS: list every value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return enumerateHash(cmd, args[0], func(_ []byte, val interface{}) {
				fmt.Println(val)
			})
		},
	}
}

func hgetallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hgetall <key>",
		Short: "THGETALL: list every field/value pair stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return enumerateHash(cmd, args[0], func(field []byte, val interface{}) {
				fmt.Printf("%s %v\n", field, val)
			})
		},
	}
}

func enumerateHash(cmd *cobra.Command, key string, emit func(field []byte, val interface{})) error {
	t, err := openTrie(cmd)
	if err != nil {
		return err
	}
	prefix := dat.HashKeyPrefix([]byte(key))
	it, err := t.PrefixSearch(prefix)
	if err != nil {
		return err
	}
	for {
		flatKey, val, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		field, ok := dat.SplitHashField([]byte(key), flatKey)
		if !ok {
			continue
		}
		emit(field, val)
	}
	return nil
}
