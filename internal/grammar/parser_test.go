package grammar

import (
	"testing"
)

func TestParseValidPrograms(t *testing.T) {
	programs := []string{
		"x = 1\n",
		"x += 1\n",
		"print(x)\n",
		"print(x, 10)\n",
		"x = len([]) + 1\n",
		"x = not True\n",
		"x = 1 < 10 and n != 0\n",
		"return\n",
		"pass\n",
		"for i in range(10):\n    pass\n",
		"for i in range(10):\n    print(i)\n",
		"while x < 10:\n    x += 1\n",
		"if x == 0:\n    pass\n",
		"if x == 0:\n    pass\nelif x == 1:\n    pass\nelse:\n    pass\n",
		"def f():\n    return 0\n",
		"class c:\n    pass\n",
		"try:\n    x = 1\nexcept:\n    pass\n",
		"try:\n    x = 1\n",
		"for i in range(10):\n    if i % 2 == 0:\n        print(i)\n",
		"x = \"hello\"\n",
		"x = (1 + 10) * 100\n",
	}
	for _, src := range programs {
		if err := ParseProgram(src); err != nil {
			t.Errorf("expected %q to parse, got error: %v", src, err)
		}
	}
}

func TestParseInvalidPrograms(t *testing.T) {
	programs := []string{
		"for:\n    pass\n",
		"for i range(10):\n    pass\n",
		"if True\n    pass\n",
		"if True:\n",       // block header with no body
		"else:\n    pass\n", // orphaned else
		"except:\n    pass\n",
		"x =\n",
		"x = +\n",
		"print(x\n",
		"print x)\n",
		"x 1\n",
		"def f:\n    pass\n", // def needs parens
		"return = 1\n",
		"x = 1\n        y = 2\n", // indent jump without a block
	}
	for _, src := range programs {
		if err := ParseProgram(src); err == nil {
			t.Errorf("expected %q to fail to parse", src)
		}
	}
}

func TestParseRejectsKeywordAsName(t *testing.T) {
	if err := ParseProgram("for for in range(10):\n    pass\n"); err == nil {
		t.Error("loop variable must not be a keyword")
	}
	if err := ParseProgram("def class():\n    pass\n"); err == nil {
		t.Error("function name must not be a keyword")
	}
}

func TestParseEmptySource(t *testing.T) {
	if err := ParseProgram(""); err != nil {
		t.Errorf("empty source should parse: %v", err)
	}
}
