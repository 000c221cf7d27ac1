// Package app runs one ETL pass over the input folder.
//
// # Run Flow
//
//	1. Resolve paths and create the input and output folders
//	2. Initialize tracing and the run metrics
//	3. Discover .xlsx, .xls and .csv files in the input folder
//	4. Read and concatenate them, tagging each row with its source file
//	5. Normalize, clean and aggregate
//	6. Write the cleaned dataset and the dashboard workbook
//	7. Write the metrics textfile and flush spans on Shutdown
//
// An empty input folder, or input files without any rows, ends the run
// with status "skipped" and leaves the outputs untouched.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer application.Shutdown(context.Background())
//	summary, err := application.Run(ctx)
package app
