package iocache

import (
	"errors"
	"fmt"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/parquet"
)

// ExecuteSnapshotExport writes the snapshot history to two Parquet files
// named after outputFile.
func ExecuteSnapshotExport(store contract.SnapshotStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("snapshot store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get snapshot status: %w", err)
	}
	if status.TotalSnapshots == 0 {
		return errors.New("no snapshot data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total snapshots: %d\n", status.TotalSnapshots)
	fmt.Printf("Total insight records: %d\n", status.TotalInsights)

	snapshots, err := store.GetAllSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshots: %w", err)
	}
	insights, err := store.GetAllSnapshotInsights()
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshot insights: %w", err)
	}

	snapshotRows := parquet.ConvertSnapshotRecords(snapshots)
	snapshotsFile := outputFile + ".snapshots.parquet"
	if err := parquet.WriteFile(snapshotRows, snapshotsFile); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}
	fmt.Printf("Exported %d snapshots to: %s\n", len(snapshotRows), snapshotsFile)

	insightRows := parquet.ConvertSnapshotInsightRecords(insights)
	insightsFile := outputFile + ".snapshot_insights.parquet"
	if err := parquet.WriteFile(insightRows, insightsFile); err != nil {
		return fmt.Errorf("failed to write snapshot insights: %w", err)
	}
	fmt.Printf("Exported %d insight records to: %s\n", len(insightRows), insightsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
