// Package core provides the business logic of the research activity admin
// backend: owner-scoped form records, spreadsheet import and export,
// templated email notifications and generated documents.
//
// The package has no transport dependencies. Web handlers and the admin CLI
// both drive it through [Service].
//
// # Form Catalog
//
// Every form kind is one [FormDefinition] registered at init time by the
// tables package from its embedded YAML catalog:
//
//	core.Register(core.FormDefinition{
//	    Info: core.FormInfo{Key: "patent", Label: "Brevete", Audience: core.AudienceUser},
//	    Fields: []core.FieldSpec{
//	        {Key: "title", Header: "Titlu", Required: true},
//	        {Key: "patentNumber", Header: "Numarul Brevetului"},
//	    },
//	})
//
// All kinds share one generic flow: [MapRow] turns a spreadsheet row into
// [Fields] through the kind's [SheetSpec], [ValidateFields] checks required
// fields, and the [Store] keeps records in one table keyed by kind and owner.
//
// # Import Pipeline
//
// Uploaded workbooks are read with [ReadFirstSheet]. Notification use-cases
// group rows with [GroupRows], fill the administrator's template with
// [Render] and send one message per recipient through the [Dispatcher],
// which records an [EmailOutcome] for each and never aborts on a failed send.
//
// # Export Pipeline
//
// [Workbook] writes one sheet per [SheetSpec], appending records one at a
// time. [AssembleArchive] packs generated DOCX documents into a ZIP.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has its own code prefix (FORM, USR, DATA, FILE, MAIL, UPL,
// AUTH, DB, RATE) and ERR000 is the fallback.
package core
