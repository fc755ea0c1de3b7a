package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/akolanti/PolicyRAG/internal/adapter/utils"
	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/rag/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Chunk and index a policy document",
	Long: `Chunks a .pdf or .txt file, embeds the chunks and adds them to the index.
The source file is left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	src := args[0]
	filename := filepath.Base(src)
	if ingest.GetDocType(filename) == commonModels.ERR {
		return fmt.Errorf("unsupported file type: %s", filename)
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.Size() > config.MaxFileSize {
		return fmt.Errorf("%s exceeds the %d byte limit", filename, config.MaxFileSize)
	}

	documentID := utils.GetNewUUID()
	// ingestion consumes its input, so it runs on a copy
	work, err := copyToTemp(src)
	if err != nil {
		return err
	}

	ragService.RegisterUpload(documentID, filename, info.Size())
	if err := ragService.IngestFile(commandContext(cmd), documentID, work, filename); err != nil {
		return fmt.Errorf("ingesting %s: %w", filename, err)
	}

	doc, err := ragService.GetDocument(documentID)
	if err != nil {
		return err
	}
	cmd.Printf("Indexed %s as %s (%d chunks)\n", filename, documentID, doc.ChunksCount)
	return nil
}

func copyToTemp(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.CreateTemp("", "policyctl-*"+filepath.Ext(src))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(out.Name())
		return "", err
	}
	return out.Name(), out.Close()
}
