package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIfStatementLayout(t *testing.T) {
	t.Parallel()

	src := "contract C {\n    function bump() public {\n        if(ready){counter = counter + 1;}\n    }\n}\n"

	tests := map[string]struct {
		opts Options
		want string
	}{
		"fits on one line without braces": {
			opts: Options{SingleLineStatementBlocks: SingleLineBlockSingle},
			want: "contract C {\n" +
				"    function bump() public {\n" +
				"        if (ready) counter = counter + 1;\n" +
				"    }\n" +
				"}\n",
		},
		"too narrow for one line": {
			opts: Options{SingleLineStatementBlocks: SingleLineBlockSingle, LineLength: 40},
			want: "contract C {\n" +
				"    function bump() public {\n" +
				"        if (ready) {\n" +
				"            counter = counter + 1;\n" +
				"        }\n" +
				"    }\n" +
				"}\n",
		},
		"multi keeps braces": {
			opts: Options{SingleLineStatementBlocks: SingleLineBlockMulti},
			want: "contract C {\n" +
				"    function bump() public {\n" +
				"        if (ready) {\n" +
				"            counter = counter + 1;\n" +
				"        }\n" +
				"    }\n" +
				"}\n",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := formatString(t, src, tt.opts)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, formatString(t, got, tt.opts))
		})
	}
}

func TestSortImportsKeepsTrailingComments(t *testing.T) {
	t.Parallel()

	src := "import \"./zeta.sol\"; // last\nimport \"./alpha.sol\"; // first\n\ncontract A {}\n"
	want := "import \"./alpha.sol\"; // first\nimport \"./zeta.sol\"; // last\n\ncontract A {}\n"
	assert.Equal(t, want, formatString(t, src, Options{SortImports: true}))

	unsorted := "import \"./zeta.sol\"; // last\nimport \"./alpha.sol\"; // first\n\ncontract A {}\n"
	assert.Equal(t, unsorted, formatString(t, src, Options{}))
}

func TestSortImportsRespectsBlankLineGroups(t *testing.T) {
	t.Parallel()

	src := "import \"./d.sol\";\nimport \"./c.sol\";\n\nimport \"./b.sol\";\nimport \"./a.sol\";\n"
	want := "import \"./c.sol\";\nimport \"./d.sol\";\n\nimport \"./a.sol\";\nimport \"./b.sol\";\n"
	assert.Equal(t, want, formatString(t, src, Options{SortImports: true}))
}

func TestDisabledRegionIsCopiedVerbatim(t *testing.T) {
	t.Parallel()

	src := "contract A {\n" +
		"    // forgefmt: disable-start\n" +
		"    uint   x   =   1;\n" +
		"          uint y=2;\n" +
		"    // forgefmt: disable-end\n" +
		"    uint   z=3;\n" +
		"}\n"
	want := "contract A {\n" +
		"    // forgefmt: disable-start\n" +
		"    uint   x   =   1;\n" +
		"          uint y=2;\n" +
		"    // forgefmt: disable-end\n" +
		"    uint256 z = 3;\n" +
		"}\n"
	assert.Equal(t, want, formatString(t, src, Options{}))
}

func TestDisabledClosingLineOfBlock(t *testing.T) {
	t.Parallel()

	src := "contract A {\n" +
		"    function f() public {\n" +
		"     uint   a=1;  } // forgefmt: disable-line\n" +
		"}\n"
	got := formatString(t, src, Options{})
	assert.Equal(t, src, got)
	assert.NotContains(t, got, "\n \n")
	assert.Equal(t, got, formatString(t, got, Options{}))
}

func TestFunctionHeaderStyles(t *testing.T) {
	t.Parallel()

	src := "contract C {\n    function transfer(address recipient, uint256 amount) external returns (bool);\n}\n"

	tests := map[string]struct {
		style MultilineFuncHeader
		want  string
	}{
		"params first": {
			style: MultilineFuncHeaderParamsFirst,
			want: "contract C {\n" +
				"    function transfer(\n" +
				"        address recipient,\n" +
				"        uint256 amount\n" +
				"    ) external returns (bool);\n" +
				"}\n",
		},
		"attributes first": {
			style: MultilineFuncHeaderAttributesFirst,
			want: "contract C {\n" +
				"    function transfer(address recipient, uint256 amount)\n" +
				"        external\n" +
				"        returns (bool);\n" +
				"}\n",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			opts := Options{LineLength: 60, MultilineFuncHeader: tt.style}
			got := formatString(t, src, opts)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, formatString(t, got, opts))
		})
	}

	short := "contract C {\n    function transfer(address to) external returns (bool);\n}\n"
	assert.Equal(t, short, formatString(t, short, Options{LineLength: 60, MultilineFuncHeader: MultilineFuncHeaderParamsFirst}))
}

func TestAssemblyBodyLayout(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body string
		want string
	}{
		"body at the brace column": {
			body: "        assembly {\nlet x := 1\n}\n",
			want: "        assembly {\n            let x := 1\n        }\n",
		},
		"single line body": {
			body: "        assembly { let x := 1 mstore(0, x) }\n",
			want: "        assembly {\n            let x := 1\n            mstore(0, x)\n        }\n",
		},
		"body that is not plain Yul": {
			body: "        assembly {\nlet x:u256 := 1\n    mstore(0, x)\n        }\n",
			want: "        assembly {\n            let x:u256 := 1\n                mstore(0, x)\n        }\n",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := formatString(t, inFunction(tt.body), Options{})
			assert.Equal(t, inFunction(tt.want), got)
			assert.Equal(t, got, formatString(t, got, Options{}))
		})
	}
}
