// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package exc

const (
	CodeUnknownFatal                  = "C0000"
	CodeFileNotFound                  = "C0001"
	CodeUnsuportedFileSystemOperation = "C0002"
	CodePermissionDenied              = "C0003"
	CodeUnsupportedFileFormat         = "C0004"
	CodeUnexpectedEOF                 = "C0005"
	CodeUnexpectedToken               = "C0006"
	CodeInvalidLiteral                = "C0007"
	CodeInvalidVersionFormat          = "C0008"
	CodeInvalidDefaultLiteral         = "C0009"
	CodeUnknownPropertyType           = "C0010"
	CodeDuplicateName                 = "C0011"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
