/*
Package descriptors provides a registration.Host backed by declaration
descriptor files.

Go has no annotation processing, so candidate type declarations are described
in YAML or HCL files. Each file declares a package and the types in it, with
their modifiers, supertypes, constructors, fields, nested types and an optional
registration block carrying the language metadata.

# YAML

	package: com.example.sl
	types:
	  - name: SLLanguage
	    modifiers: [public]
	    extends: com.oracle.truffle.api.TruffleLanguage
	    registration:
	      id: sl
	      name: SL
	      version: "0.1"
	      mime_types: [application/x-sl]

# HCL

	package = "com.example.sl"

	type "SLLanguage" {
	  modifiers = ["public"]
	  extends   = "com.oracle.truffle.api.TruffleLanguage"

	  registration {
	    id         = "sl"
	    name       = "SL"
	    version    = "0.1"
	    mime_types = ["application/x-sl"]
	  }
	}

Types without constructors get the implicit default constructor. Types and
fields may list expect_errors; the Host then acts as a registration.Suppressor
for fixtures that are expected to fail validation.

# Usage

	parser := descriptors.NewParser(descriptors.DefaultParserConfig(), log)
	host := descriptors.NewHost(registration.DefaultBaseType, log)

	files, err := parser.ParseDir(ctx, "testdata/languages")
	if err != nil {
		return err
	}
	round := host.Round(files)
*/
package descriptors
