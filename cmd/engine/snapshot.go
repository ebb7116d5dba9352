package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delveforge/delve-engine/internal/engine"
	"github.com/delveforge/delve-engine/internal/pkg/clock"
	"github.com/delveforge/delve-engine/internal/redis"
	"github.com/delveforge/delve-engine/internal/repositories/snapshot"
)

var (
	snapshotProfile string
	snapshotRedis   string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect or delete persisted profile state",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a profile's snapshot as JSON",
	RunE:  runSnapshotShow,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a profile's snapshot",
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotCmd.PersistentFlags().StringVar(&snapshotProfile, "profile", engine.DefaultProfileID, "profile to inspect")
	snapshotCmd.PersistentFlags().StringVar(&snapshotRedis, "redis", "localhost:6379", "redis endpoint")
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func snapshotRepository() (snapshot.Repository, func(), error) {
	client, err := redis.NewClient(snapshotRedis, nil)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() { _ = client.Close() }

	repo, err := snapshot.NewRedisRepository(&snapshot.Config{
		Client: client,
		Clock:  clock.New(),
	})
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	return repo, closeClient, nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	repo, closeClient, err := snapshotRepository()
	if err != nil {
		return err
	}
	defer closeClient()

	got, err := repo.Get(cmd.Context(), snapshot.GetInput{ProfileID: snapshotProfile})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(got.Snapshot, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	repo, closeClient, err := snapshotRepository()
	if err != nil {
		return err
	}
	defer closeClient()

	if _, err := repo.Delete(cmd.Context(), snapshot.DeleteInput{ProfileID: snapshotProfile}); err != nil {
		return err
	}
	fmt.Printf("snapshot for %s deleted\n", snapshotProfile)
	return nil
}
