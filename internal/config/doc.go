// Package config loads and validates the salesetl configuration.
//
// Values are layered in this order, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. A YAML file: the -config flag, or the first of config.yaml,
//     configs/config.yaml and ../configs/config.yaml that exists
//  3. SALESETL_* environment variables, e.g. SALESETL_INPUT_FOLDER or
//     SALESETL_LOGGING_LEVEL
//
// col_map and category_map merge key by key across every layer and are
// finally placed over the pipeline's built-in column mapping, so a file
// that adds one alias keeps all the others.
//
// Example config.yaml:
//
//	input_folder: input
//	output_folder: output
//	output_clean_file: cleaned_data.xlsx
//	output_dashboard_file: dashboard.xlsx
//	col_map:
//	  Qty Sold: qty
//	category_map:
//	  Coffee beans: Coffee
//	logging:
//	  level: debug
//	telemetry:
//	  trace_exporter: file
//	  trace_file: traces.json
package config
