package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/KarpelesLab/ffs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ffs",
	Short:         "Inspect and modify ffs disk images",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(formatCmd, infoCmd, statsCmd, lsCmd, treeCmd, catCmd,
		putCmd, rmCmd, snapshotCmd, restoreCmd, mountCmd)
	snapshotCmd.Flags().StringVar(&snapshotComp, "compression", "zstd", "snapshot compression (none, zstd, xz)")
}

func logger() *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log.Sugar()
}

// withController mounts the image, runs fn, and syncs the image back.
func withController(image string, fn func(c *ffs.Controller) error) error {
	disk, err := ffs.OpenFileDisk(image)
	if err != nil {
		return err
	}
	defer disk.Close()

	c, err := ffs.Mount(disk, ffs.WithLogger(logger()))
	if err != nil {
		return err
	}
	defer c.Unmount()
	return fn(c)
}

var formatCmd = &cobra.Command{
	Use:   "format <image>",
	Short: "Create and format a new disk image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := ffs.CreateFileDisk(args[0], ffs.DiskSectors)
		if err != nil {
			return err
		}
		defer disk.Close()
		if err := ffs.Format(disk); err != nil {
			return err
		}
		fmt.Printf("formatted %s (%d sectors)\n", args[0], uint32(ffs.DiskSectors))
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <image>",
	Short: "Show the disk layout and mount status of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(ffs.DescribeLayout())
		return withController(args[0], func(c *ffs.Controller) error {
			fmt.Println("mount: ok")
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <image>",
	Short: "Show file, directory and free block counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(args[0], func(c *ffs.Controller) error {
			files, err := c.CountFiles()
			if err != nil {
				return err
			}
			dirs, err := c.CountDirs()
			if err != nil {
				return err
			}
			free, err := c.FreeDataBlocks()
			if err != nil {
				return err
			}
			fmt.Printf("files:       %d\n", files)
			fmt.Printf("dir pages:   %d\n", dirs)
			fmt.Printf("free blocks: %d\n", free)
			return nil
		})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <image> [path]",
	Short: "List a directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 1 {
			dir = strings.Trim(args[1], "/")
		}
		if dir == "" {
			dir = "."
		}
		return withController(args[0], func(c *ffs.Controller) error {
			entries, err := fs.ReadDir(c.FS(), dir)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.IsDir() {
					fmt.Printf("%s/\n", e.Name())
					continue
				}
				info, err := e.Info()
				if err != nil {
					return err
				}
				fmt.Printf("%-40s %6d\n", e.Name(), info.Size())
			}
			return nil
		})
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <image>",
	Short: "List every file in the image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(args[0], func(c *ffs.Controller) error {
			return fs.WalkDir(c.FS(), ".", func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if p == "." {
					fmt.Println("/")
					return nil
				}
				indent := strings.Repeat("  ", strings.Count(p, "/")+1)
				if d.IsDir() {
					fmt.Printf("%s%s/\n", indent, d.Name())
				} else {
					fmt.Printf("%s%s\n", indent, d.Name())
				}
				return nil
			})
		})
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <image> <path>",
	Short: "Print the contents of a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(args[0], func(c *ffs.Controller) error {
			r, err := c.Open(args[1])
			if err != nil {
				return err
			}
			_, err = io.Copy(os.Stdout, io.NewSectionReader(r, 0, int64(r.FileLen())))
			return err
		})
	},
}

var putCmd = &cobra.Command{
	Use:   "put <image> <src> [dest]",
	Short: "Copy a local file into the image",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		dest := "/" + path.Base(args[1])
		if len(args) > 2 {
			dest = args[2]
		}
		return withController(args[0], func(c *ffs.Controller) error {
			if err := c.Create(dest, data); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d bytes)\n", dest, len(data))
			return nil
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <image> <path>",
	Short: "Delete a file from the image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(args[0], func(c *ffs.Controller) error {
			return c.Delete(args[1])
		})
	},
}

var snapshotComp string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <image> <out>",
	Short: "Save a (optionally compressed) snapshot of the image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comp, err := ffs.ParseCompression(snapshotComp)
		if err != nil {
			return err
		}
		disk, err := ffs.OpenFileDisk(args[0])
		if err != nil {
			return err
		}
		defer disk.Close()
		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()
		if err := ffs.WriteSnapshot(out, disk, comp); err != nil {
			return err
		}
		fmt.Printf("snapshot written to %s (%s)\n", args[1], comp)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot> <image>",
	Short: "Restore a snapshot into a disk image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()
		mem, err := ffs.ReadSnapshot(in)
		if err != nil {
			return err
		}
		disk, err := ffs.CreateFileDisk(args[1], ffs.DiskSectors)
		if err != nil {
			return err
		}
		defer disk.Close()
		buf := make([]byte, ffs.BlockLen)
		for sector := uint32(0); sector < ffs.DiskSectors; sector++ {
			if err := mem.ReadBlock(sector, buf); err != nil {
				return err
			}
			if err := disk.WriteBlock(sector, buf); err != nil {
				return err
			}
		}
		fmt.Printf("restored %s\n", args[1])
		return nil
	},
}

var mountCmd = &cobra.Command{
	Use:   "mount <image> <mountpoint>",
	Short: "Serve the image read-only over FUSE",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(args[0], func(c *ffs.Controller) error {
			server, err := c.MountFuse(args[1])
			if err != nil {
				return err
			}
			fmt.Printf("mounted on %s, unmount to exit\n", args[1])
			server.Wait()
			return nil
		})
	},
}
