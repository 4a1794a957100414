/*
Package registry holds the type metadata of EntityModel entities.

Each entity type owns one immutable Schema mapping field names to a FieldSpec
(format, element format, default). Schemas are built once and passed by
reference to every record of the type; there is no global registry.

Declaring fields:

	price, _ := registry.Declare("price", registry.Float)
	tags, _ := registry.Declare("tags", registry.Set, registry.Of(registry.String))
	schema, err := registry.NewSchema(price, tags)

Invalid declarations fail immediately with a ConfigurationError:

	_, err := registry.Declare("bad", registry.Set, registry.Of(registry.Array))
	errors.IsConfigurationError(err) // true

Definitions can also be loaded from YAML with LoadDefinition, which is how the
modelctl command line tool describes the tables it operates on.
*/
package registry
