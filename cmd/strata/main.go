// Package main provides the Strata ML Framework CLI.
package main

import (
	"fmt"
	"os"

	"github.com/strata-ml/strata/internal/serialization"
)

const version = "v0.3.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("Strata ML Framework %s\n", version)
	case "inspect":
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: strata inspect <file.strata>")
			os.Exit(2)
		}
		if err := inspect(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "strata: %v\n", err)
			os.Exit(1)
		}
	case "convert":
		if len(os.Args) != 4 {
			fmt.Fprintln(os.Stderr, "usage: strata convert <in.strata> <out.safetensors>")
			os.Exit(2)
		}
		if err := convert(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "strata: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "strata: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Strata ML Framework - layered models for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version                      Show version")
	fmt.Println("  inspect <file>               Show the header and tensors of a .strata file")
	fmt.Println("  convert <in> <out>           Convert a .strata file to safetensors")
}

// inspect prints the header and tensor table of a .strata file.
func inspect(path string) error {
	r, err := serialization.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	header := r.Header()
	fmt.Printf("file:           %s\n", path)
	fmt.Printf("format version: %d\n", header.FormatVersion)
	fmt.Printf("strata version: %s\n", header.StrataVersion)
	fmt.Printf("model type:     %s\n", header.ModelType)
	fmt.Printf("created at:     %s\n", header.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("architecture:   %v\n", len(header.Architecture) > 0)
	if meta := header.CheckpointMeta; meta != nil && meta.IsCheckpoint {
		fmt.Printf("checkpoint:     epoch %d, step %d, loss %.6f, optimizer %s\n",
			meta.Epoch, meta.Step, meta.Loss, meta.OptimizerType)
	}
	for key, value := range r.Metadata() {
		fmt.Printf("metadata:       %s=%s\n", key, value)
	}

	fmt.Printf("\ntensors (%d):\n", len(header.Tensors))
	for _, t := range header.Tensors {
		fmt.Printf("  %-32s %-8s %-16v %d bytes\n", t.Name, t.DType, t.Shape, t.Size)
	}
	return nil
}

// convert rewrites a .strata file's tensors in the safetensors format.
// Architecture and checkpoint metadata do not survive the conversion.
func convert(inPath, outPath string) error {
	r, err := serialization.NewReader(inPath)
	if err != nil {
		return err
	}
	defer r.Close()

	stateDict, err := r.ReadStateDict()
	if err != nil {
		return err
	}

	metadata := map[string]string{"format": "strata"}
	if modelType := r.Header().ModelType; modelType != "" {
		metadata["model_type"] = modelType
	}
	if err := serialization.WriteSafetensors(outPath, stateDict, metadata); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d tensors)\n", outPath, len(stateDict))
	return nil
}
