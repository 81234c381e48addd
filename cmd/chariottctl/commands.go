package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tgo/chariott/internal/app"
	"github.com/tgo/chariott/internal/database"
	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/rag"
	"github.com/tgo/chariott/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		// the pgvector backend migrates its own table on construction
		if _, err := app.NewIndex(cmd.Context(), cfg, db); err != nil {
			return err
		}
		cmd.Println("Schema up to date")
		return nil
	},
}

var (
	ingestTenant string
	ingestHotel  string
	ingestUser   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf...]",
	Short: "Upload and index local PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			for _, path := range args {
				doc, err := ingestFile(cmd, a, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				cmd.Printf("%s  %s  %s\n", doc.ID, doc.Status, doc.URL)
			}
			return nil
		})
	},
}

func ingestFile(cmd *cobra.Command, a *app.App, path string) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return a.Documents.Upload(cmd.Context(), service.UploadInput{
		Tenant:      ingestTenant,
		Hotel:       ingestHotel,
		FileName:    filepath.Base(path),
		UserID:      ingestUser,
		ContentType: "application/pdf",
		Size:        info.Size(),
		Reader:      f,
	})
}

var vectorsCmd = &cobra.Command{
	Use:   "vectors",
	Short: "Manage indexed vectors",
}

var vectorsDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete every vector of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			res, err := a.Vectors.DeleteByDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Println(res.Message)
			return nil
		})
	},
}

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the document index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			answer, err := a.Responder.Answer(cmd.Context(), rag.Query{Text: args[0], TopK: askTopK})
			if err != nil {
				return err
			}
			cmd.Println(answer.Response)
			if len(answer.Sources) > 0 {
				cmd.Println()
				cmd.Println("Sources:")
				for _, src := range answer.Sources {
					cmd.Printf("  %s  %.3f  %s\n", src.DocumentID, src.Score, src.URL)
				}
			}
			return nil
		})
	},
}

var reconcilePurge bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Report ledger rows that disagree with the vector index",
	Long: `Lists documents that failed, are stuck pending, or completed without
vectors. With --purge, vectors left behind by failed ingestions are deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			rows, err := a.Vectors.Reconcile(cmd.Context(), reconcilePurge)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				cmd.Println("Ledger and index agree")
				return nil
			}
			for _, row := range rows {
				cmd.Printf("%s  %-10s  vectors=%d  %s\n", row.Document.ID, row.Reason, row.Vectors, row.Document.FileName)
			}
			cmd.Printf("Total: %d documents\n", len(rows))
			return nil
		})
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTenant, "tenant", "", "tenant (hotel chain) id")
	ingestCmd.Flags().StringVar(&ingestHotel, "hotel", "", "hotel id")
	ingestCmd.Flags().StringVar(&ingestUser, "user", "operator", "owning user id")
	_ = ingestCmd.MarkFlagRequired("tenant")

	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "passages to retrieve (default RAG_TOP_K)")
	reconcileCmd.Flags().BoolVar(&reconcilePurge, "purge", false, "delete vectors of failed documents")

	vectorsCmd.AddCommand(vectorsDeleteCmd)
	rootCmd.AddCommand(migrateCmd, ingestCmd, vectorsCmd, askCmd, reconcileCmd)
}
