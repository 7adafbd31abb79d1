// Package assets provides the print stylesheet and HTML templates used to lay
// out the intermediate formatting document.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in cloud style)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - first loader that has the asset wins
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css       # print stylesheet (e.g., cloud.css)
//	└── templates/
//	    └── {name}.html      # layout templates (e.g., cover.html)
//
// # Security
//
// Asset names are validated before any lookup, and FilesystemLoader reads
// through os.Root so symlinks cannot leave the asset directory.
package assets
