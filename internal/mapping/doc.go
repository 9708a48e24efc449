// Package mapping provides the mapper definition document: metadata,
// relations, provider options, loading and saving in YAML or JSON,
// validation against resolved schemas, and the payload submitted to the
// host.
//
// # Document Overview
//
// A definition has the following structure:
//
//	name: order-export
//	version: "1.0"
//	desc: Exports orders to the warehouse
//	author:
//	  - Jane Doe
//	fields:
//	  id:
//	    name: order_id
//	  customer.name:
//	    name: customer_name
//	  status:
//	    constant: new
//	  source:
//	    context: $static:{origin}
//	mapper_options:
//	  mapper-input:
//	    type: connection
//	    name: omq
//	    path: /orders
//	  mapper-output:
//	    type: type
//	    name: qore
//	    path: /hash
//	    custom-fields:
//	      note:
//	        name: note
//	        type:
//	          name: string
//	        isCustom: true
//	        firstCustomInHierarchy: true
//	output_field_option_types:
//	  - outputField: status
//	    field: constant
//	    type: string
//
// # Relations
//
// Every entry of "fields" binds one output field, addressed by its
// dot-joined path, to at most one source ("name", "use_input_record" or
// "context") plus any number of decoration keys declared by the host's
// mapper keys.
//
// # Submission
//
// A definition may be submitted once its metadata is valid and at least
// one relation is non-empty. Empty relations are dropped from the payload.
package mapping
