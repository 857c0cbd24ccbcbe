package oracle

import "fmt"

const systemMessage = "You are a helpful assistant that analyzes JSON data. Provide clear, detailed responses based on the data provided."

// matchInstruction 比对指令模板
// 输出格式约束与解析器的文法一一对应，改动需两边同步。
const matchInstruction = `compare the schemas from the two banks provided in the JSON files. For each schema, evaluate all possible combinations and identify the best corresponding schemas based on their descriptions.

MAKE THE MAX NUMBER OF MATCHES AS POSSIBLE, HENCE LEAVE A FEW UN MATCHED SCHEMAS AS POSSIBLE. but do not force connections: if a schema really does not correspond to any other, leave it unmatched.

ALSO DO NOT MATCH A SCHEMA TO ITSELF. OR MATCH A BANK 1 SCHEMA TO A BANK 1 SCHEMA.

No schema should be omitted: every schema from both JSON files must appear in your final output, whether matched or not. HOWEVER, do not repeat any single schema twice

There are %d in the first JSON, %d in the second JSON. the list you output should have this number of schemas, weather matched or unmatched

When comparing, ignore the schema category and rely only on the schema names and descriptions to determine correspondence.

Be careful with schemas that have similar names but different meanings; use the descriptions to distinguish them.

Output format requirement:

(Bank 1: schema category / schema, Bank 2: schema category/ schema(s))
(Bank 1: schema category / schema, Bank 2: schema category/ schema(s)) etc.

[ one empty line ]

header: list of bank 1 schemas unmatched

[ one empty line ]

(list of bank 1 schemas unmatched)

[ one empty line ]

header: list of bank 2 schemas unmatched

[ one empty line ]

(list of bank 2 schemas unmatched)

Provide no unnecessary text, only matches in the format above.`

// BuildPrompt 组装完整提示词：指令 + 两份语料 JSON
func BuildPrompt(totalSchemas1, totalSchemas2 int, corpusJSON1, corpusJSON2 string) string {
	instruction := fmt.Sprintf(matchInstruction, totalSchemas1, totalSchemas2)
	return fmt.Sprintf("%s\n\nHere is the first JSON data:\n%s\n\nHere is the second JSON data:\n%s\n", instruction, corpusJSON1, corpusJSON2)
}
