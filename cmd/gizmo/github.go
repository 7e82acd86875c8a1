package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/natejswenson/gizmo/pkg/config"
	"github.com/natejswenson/gizmo/pkg/github"
)

func newGithubCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "github",
		Short: "Look up and create GitHub repositories",
	}

	infoCmd := &cobra.Command{
		Use:   "info <owner> <repo>",
		Short: "Show repository information",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			client := github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token)

			start := time.Now()
			repo, err := client.RepoInfo(cmd.Context(), args[0], args[1])
			recordCall(cfg, "github", args[0]+"/"+args[1], start, err)
			if err != nil {
				return err
			}
			printRepo(repo)
			return nil
		},
	}

	var batchFile string
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Look up every repository listed in a CSV file",
		Long: "Read owner/repo pairs from a CSV file with username and repository\n" +
			"columns and report each in turn. Failures are reported and skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runBatch(cmd, cfg, batchFile)
		},
	}
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "repositories.csv", "CSV file of username,repository pairs")

	var description string
	var private bool
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a repository for the authenticated user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			client := github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token)

			start := time.Now()
			repo, err := client.CreateRepo(cmd.Context(), github.CreateRepoRequest{
				Name:        args[0],
				Description: description,
				Private:     private,
			})
			recordCall(cfg, "github", "create:"+args[0], start, err)
			if err != nil {
				return err
			}
			fmt.Printf("Repository %q created successfully: %s\n", repo.Name, repo.HTMLURL)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&description, "description", "d", "", "repository description")
	createCmd.Flags().BoolVar(&private, "private", false, "create a private repository")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.AddCommand(infoCmd, batchCmd, createCmd)
	return cmd
}

func runBatch(cmd *cobra.Command, cfg *config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	ownerCol, repoCol := -1, -1
	for i, name := range header {
		switch name {
		case "username":
			ownerCol = i
		case "repository":
			repoCol = i
		}
	}
	if ownerCol < 0 || repoCol < 0 {
		return fmt.Errorf("csv must have username and repository columns")
	}

	client := github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}

		owner, name := row[ownerCol], row[repoCol]
		start := time.Now()
		repo, err := client.RepoInfo(cmd.Context(), owner, name)
		recordCall(cfg, "github", owner+"/"+name, start, err)
		if err != nil {
			fmt.Printf("Failed to retrieve %s/%s: %v\n", owner, name, err)
			continue
		}
		printRepo(repo)
	}
	return nil
}

func printRepo(repo github.Repo) {
	fmt.Printf("Repository Name: %s\n", repo.Name)
	fmt.Printf("Description: %s\n", repo.Description)
	fmt.Printf("Stars: %d\n", repo.Stargazers)
	fmt.Printf("Forks: %d\n", repo.Forks)
}
