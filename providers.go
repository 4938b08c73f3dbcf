package main

import (
	// Import all provider modules to trigger their init() functions
	_ "github.com/biocat-io/biocat/pkg/providers/clinicalstudy"
	_ "github.com/biocat-io/biocat/pkg/providers/datadomain"
	_ "github.com/biocat-io/biocat/pkg/providers/scientificpaper"
)
