package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Remove a document and its vectors from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output documents as JSON")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	docs := ragService.GetDocumentsInfo()
	if listJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}
	for _, d := range docs {
		cmd.Printf("%s  %-8s  %4d chunks  %s\n", d.DocumentID, d.Status, d.ChunksCount, d.Filename)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := ragService.DeleteDocument(commandContext(cmd), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
