package config

import (
	_ "github.com/snapgen/snapgen/internal/scaffold/function"
	_ "github.com/snapgen/snapgen/internal/scaffold/graph"
	_ "github.com/snapgen/snapgen/internal/scaffold/module"
	_ "github.com/snapgen/snapgen/internal/scaffold/sqlfunction"
)
