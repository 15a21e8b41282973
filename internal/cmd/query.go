package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clangcg/clangcg/internal/store"
)

var queryDatabasePath string

// queryCmd is a parent for the store's read-only query surface:
// find-at, find-by-name, callers, overrides.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query an existing call-graph database",
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.PersistentFlags().StringVar(&queryDatabasePath, "database-path", "", "Directory the Dolt-backed store lives in (required)")
	queryCmd.MarkPersistentFlagRequired("database-path")

	queryCmd.AddCommand(queryFindAtCmd)
	queryCmd.AddCommand(queryFindByNameCmd)
	queryCmd.AddCommand(queryCallersCmd)
	queryCmd.AddCommand(queryOverridesCmd)
}

func openQueryStore() (*store.Store, error) {
	return store.OpenFile(queryDatabasePath)
}

var (
	findAtPath   string
	findAtLine   uint32
	findAtColumn uint32
)

var queryFindAtCmd = &cobra.Command{
	Use:   "find-at",
	Short: "Find every declaration, definition, and call enclosing a source position",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openQueryStore()
		if err != nil {
			return err
		}
		defer st.Close()

		fns, err := st.FindFunctionsAt(findAtPath, findAtLine, findAtColumn)
		if err != nil {
			return err
		}
		printFunctions(fns)
		return nil
	},
}

func init() {
	queryFindAtCmd.Flags().StringVar(&findAtPath, "path", "", "File path as recorded in the store (required)")
	queryFindAtCmd.Flags().Uint32Var(&findAtLine, "line", 0, "1-based line number (required)")
	queryFindAtCmd.Flags().Uint32Var(&findAtColumn, "column", 0, "1-based column number (required)")
	queryFindAtCmd.MarkFlagRequired("path")
	queryFindAtCmd.MarkFlagRequired("line")
	queryFindAtCmd.MarkFlagRequired("column")
}

var findByNameQualifiedName string

var queryFindByNameCmd = &cobra.Command{
	Use:   "find-by-name",
	Short: "Find every declaration and definition with a given fully qualified name",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openQueryStore()
		if err != nil {
			return err
		}
		defer st.Close()

		fns, err := st.FindFunctionsByQualifiedName(findByNameQualifiedName)
		if err != nil {
			return err
		}
		printFunctions(fns)
		return nil
	},
}

func init() {
	queryFindByNameCmd.Flags().StringVar(&findByNameQualifiedName, "qualified-name", "", "Fully qualified name (required)")
	queryFindByNameCmd.MarkFlagRequired("qualified-name")
}

var (
	callersImplID  int64
	callersVirtual bool
)

var queryCallersCmd = &cobra.Command{
	Use:   "callers",
	Short: "List every call site targeting a function implementation",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openQueryStore()
		if err != nil {
			return err
		}
		defer st.Close()

		fns, err := st.Callers(callersImplID, callersVirtual)
		if err != nil {
			return err
		}
		printFunctions(fns)
		return nil
	},
}

func init() {
	queryCallersCmd.Flags().Int64Var(&callersImplID, "impl-id", 0, "Id of the target function's Decl or Impl row (required)")
	queryCallersCmd.Flags().BoolVar(&callersVirtual, "virtual", false, "Whether the target function is virtual")
	queryCallersCmd.MarkFlagRequired("impl-id")
}

var overridesBaseQualifiedName string

var queryOverridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "List every override of a virtual method",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openQueryStore()
		if err != nil {
			return err
		}
		defer st.Close()

		fns, err := st.Overrides(overridesBaseQualifiedName)
		if err != nil {
			return err
		}
		printFunctions(fns)
		return nil
	},
}

func init() {
	queryOverridesCmd.Flags().StringVar(&overridesBaseQualifiedName, "base-qualified-name", "", "Qualified name of the base virtual method (required)")
	queryOverridesCmd.MarkFlagRequired("base-qualified-name")
}

func printFunctions(fns []*store.Function) {
	if len(fns) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, f := range fns {
		fmt.Printf("%d\t%s\t%s\t%s\t%d:%d-%d:%d\n",
			f.ID, f.Kind, f.QualifiedName, f.Signature,
			f.Range.Start.Line, f.Range.Start.Column, f.Range.End.Line, f.Range.End.Column)
	}
}
