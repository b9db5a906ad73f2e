package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mathfmt/internal/api"
	"github.com/matzehuels/mathfmt/pkg/datamodel"
	"github.com/matzehuels/mathfmt/pkg/errors"
	"github.com/matzehuels/mathfmt/pkg/rdf"
)

// rdfCommand creates the rdf command.
func (c *CLI) rdfCommand() *cobra.Command {
	var (
		renderer   rendererFlags
		subject    string
		property   string
		entityNS   string
		propertyNS string
	)

	cmd := &cobra.Command{
		Use:   "rdf <tex>",
		Short: "Emit an N-Triples statement for a math value",
		Long: `Render TeX and print one N-Triples statement whose object is the MathML,
typed as http://www.w3.org/1998/Math/MathML. Failed renderings are written as
an error math element.`,
		Example: `  mathfmt rdf --subject Q11518 --property P2534 'a^2 + b^2 = c^2'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{subject, property} {
				if err := errors.ValidateLocalName(name); err != nil {
					return err
				}
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := renderer.apply(cmd, cfg); err != nil {
				return err
			}
			r, closeCache, err := c.newRenderer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			w := rdf.NewNTriplesWriter()
			w.Prefix("wd", entityNS)
			w.Prefix("wdt", propertyNS)
			w.Start()
			w.About("wd", subject)

			snak := datamodel.NewPropertyValueSnak(property, datamodel.StringValue(args[0]))
			if err := rdf.NewMathMLBuilder(r, c.Logger).AddValue(cmd.Context(), w, "wdt", property, "", "", snak); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), w.Drain())
			return nil
		},
	}

	renderer.register(cmd)
	cmd.Flags().StringVar(&subject, "subject", "Q1", "local name of the subject entity")
	cmd.Flags().StringVar(&property, "property", "P1", "local name of the property")
	cmd.Flags().StringVar(&entityNS, "entity-ns", api.DefaultEntityNamespace, "namespace of subject entities")
	cmd.Flags().StringVar(&propertyNS, "property-ns", api.DefaultPropertyNamespace, "namespace of properties")

	return cmd
}
