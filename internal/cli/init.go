package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"amaris/internal/paths"
	"amaris/pkg/provider"
)

const (
	biomeConfigJSON = `{
  "$schema": "https://biomejs.dev/schemas/1.9.4/schema.json",
  "vcs": {
    "enabled": true,
    "clientKind": "git",
    "useIgnoreFile": true
  },
  "organizeImports": {
    "enabled": true
  },
  "files": {
    "ignore": ["node_modules"]
  },
  "formatter": {
    "enabled": true,
    "indentStyle": "space",
    "indentWidth": 4,
    "lineWidth": 120
  },
  "linter": {
    "enabled": true,
    "rules": {
      "recommended": true
    }
  },
  "javascript": {
    "formatter": {
      "quoteStyle": "double"
    },
    "globals": ["Bun"]
  }
}
`
	biomeVSCodeSettingsJSON = `{
  "editor.defaultFormatter": "biomejs.biome",
  "editor.codeActionsOnSave": {
    "quickfix.biome": "explicit",
    "source.organizeImports.biome": "explicit"
  },
  "files.exclude": {
    "**/node_modules": true
  }
}
`
	prettierConfigJSON = `{
  "semi": true,
  "trailingComma": "es5",
  "tabWidth": 4,
  "bracketSpacing": true,
  "singleQuote": false,
  "arrowParens": "always",
  "quoteProps": "consistent",
  "printWidth": 120,
  "plugins": ["@ianvs/prettier-plugin-sort-imports"],
  "importOrderTypeScriptVersion": "5.4.5",
  "overrides": [
    {
      "files": ["**/.vscode/*.json", "**/tsconfig.json", "**/tsconfig.*.json"],
      "options": {
        "parser": "jsonc"
      }
    }
  ]
}
`
	eslintConfigJS = `import js from "@eslint/js";
import eslintPluginPrettierRecommended from "eslint-plugin-prettier/recommended";
import reactHooks from "eslint-plugin-react-hooks";
import eslintPluginUnicorn from "eslint-plugin-unicorn";
import unusedImports from "eslint-plugin-unused-imports";
import globals from "globals";
import ts from "typescript-eslint";

/** @type {import('eslint').Linter.Config[]} */
export default [
    {
        files: ["**/*.{js,mjs,cjs,ts,tsx}"],
        languageOptions: {
            globals: globals.builtin,
        },
        plugins: {
            "unicorn": eslintPluginUnicorn,
            "unused-imports": unusedImports,
            "react-hooks": reactHooks,
        },
    },
    js.configs.recommended,
    ...ts.configs.recommended,
    {
        rules: {
            "unicorn/prefer-node-protocol": "error",
            "unused-imports/no-unused-imports": "warn",
            "unused-imports/no-unused-vars": "warn",
            "no-console": "off",
        },
    },
    eslintPluginPrettierRecommended,
];
`
	prettierVSCodeSettingsJSON = `{
  "typescript.tsdk": "node_modules/typescript/lib",
  "typescript.enablePromptUseWorkspaceTsdk": true,
  "editor.defaultFormatter": "esbenp.prettier-vscode",
  "editor.codeActionsOnSave": {
    "source.fixAll.eslint": "explicit"
  },
  "eslint.useFlatConfig": true,
  "files.exclude": {
    "**/node_modules": true
  }
}
`
)

type seedTemplate struct {
	name    string
	content string
}

type seed struct {
	doc       provider.Document
	templates []seedTemplate
}

// seeds are the built-in providers written by init so a fresh install has
// working examples to apply.
func seeds() []seed {
	return []seed{
		{
			doc: provider.Document{
				Name:           "biome",
				Description:    "Biome formatter and linter",
				PackageManager: "bun",
				Packages:       []string{"@biomejs/biome"},
				Configuration: []provider.ConfigEntry{
					{FileLocation: ".", FileName: "biome.json", SourceFrom: "biome.json"},
					{FileLocation: ".vscode", FileName: "settings.json", SourceFrom: "settings.json"},
				},
				Scripts: []provider.ScriptEntry{
					{Name: "format", Script: "biome format ."},
					{Name: "lint", Script: "biome lint ."},
				},
			},
			templates: []seedTemplate{
				{"biome.json", biomeConfigJSON},
				{"settings.json", biomeVSCodeSettingsJSON},
			},
		},
		{
			doc: provider.Document{
				Name:           "prettier_eslint",
				Description:    "Prettier + ESLint",
				PackageManager: "bun",
				Packages: []string{
					"prettier",
					"@ianvs/prettier-plugin-sort-imports",
					"eslint",
					"@eslint/js",
					"typescript-eslint",
					"eslint-config-prettier",
					"eslint-plugin-prettier",
					"eslint-plugin-react-hooks",
					"eslint-plugin-unicorn",
					"eslint-plugin-unused-imports",
				},
				Configuration: []provider.ConfigEntry{
					{FileLocation: ".", FileName: ".prettierrc.json", SourceFrom: "prettierrc.json"},
					{FileLocation: ".", FileName: "eslint.config.js", SourceFrom: "eslint.config.js"},
					{FileLocation: ".vscode", FileName: "settings.json", SourceFrom: "settings.json"},
				},
				Scripts: []provider.ScriptEntry{
					{Name: "format", Script: "prettier --write ."},
					{Name: "format:check", Script: "prettier --check ."},
					{Name: "lint", Script: "eslint ."},
					{Name: "lint:fix", Script: "eslint . --fix"},
				},
			},
			templates: []seedTemplate{
				{"prettierrc.json", prettierConfigJSON},
				{"eslint.config.js", eslintConfigJS},
				{"settings.json", prettierVSCodeSettingsJSON},
			},
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the amaris home and seed the example providers",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	home, err := resolveHome()
	if err != nil {
		return err
	}

	var created []string
	for _, s := range seeds() {
		if err := ensureSeedProvider(home, s.doc, &created); err != nil {
			return err
		}
		if err := ensureSeedConfigs(home, s.doc.Name, s.templates, &created); err != nil {
			return err
		}
	}

	if len(created) == 0 {
		cmd.Printf("amaris home already initialized at %s\n", home.Root)
		return nil
	}

	cmd.Printf("Initialized amaris home at %s\n", home.Root)
	for _, entry := range created {
		cmd.Printf("  created %s\n", entry)
	}
	cmd.Println("Add provider documents to the providers directory and their templates to configs.")

	return nil
}

func ensureSeedProvider(home paths.HomePaths, doc provider.Document, created *[]string) error {
	path := filepath.Join(home.ProvidersDir, doc.Name+".json")
	exists, err := paths.FileExists(path)
	if err != nil {
		return fmt.Errorf("check seed provider %s: %w", doc.Name, err)
	}
	if exists {
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seed provider %s: %w", doc.Name, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write seed provider %s: %w", doc.Name, err)
	}
	*created = append(*created, "providers/"+doc.Name+".json")
	return nil
}

func ensureSeedConfigs(home paths.HomePaths, name string, templates []seedTemplate, created *[]string) error {
	dir := home.ProviderConfigDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create seed config dir: %w", err)
	}

	for _, tpl := range templates {
		path := filepath.Join(dir, tpl.name)
		exists, err := paths.FileExists(path)
		if err != nil {
			return fmt.Errorf("check seed config %s: %w", tpl.name, err)
		}
		if exists {
			continue
		}
		if err := os.WriteFile(path, []byte(tpl.content), 0o644); err != nil {
			return fmt.Errorf("write seed config %s: %w", tpl.name, err)
		}
		*created = append(*created, "configs/"+name+"/"+tpl.name)
	}
	return nil
}
