package inference

import (
	"fmt"
	"time"
)

// promptTimeLayout renders local time as yyyy-MM-dd HH:mm.
const promptTimeLayout = "2006-01-02 15:04"

const chatPromptTemplate = `Today Date: %s

Tool Instructions:
- When user is asking a question that requires your reasoning, do not use a function call or generate functions.
- Only function call if user's intention matches the function that you have access to.
- When looking for real time information use relevant functions if available.
- Ignore previous conversation history if you are making a tool call.

You have access to the following functions:
%s

If you decide to invoke any of the function(s), you MUST put it in the format of [func_name1(params_name1=params_value1, params_name2=params_value2...), func_name2(params)]
You SHOULD NOT include any other text in the response.

Reminder:
- Function calls MUST follow the specified format
- Required parameters MUST be specified
- Only call one function at a time
- Put the entire function call reply on one line
- When returning a function call, don't add anything else to your response
- When scheduling the events, make sure you set the date and time right. Use step by step reasoning for date such as next Tuesday
`

const agentPromptTemplate = "Think step by step to decide if you need to generate a tool call based on tools available to you. " +
	"If not, just answer the question. If you decide to generate function, reply with the function you only. " +
	"For your reference, Today Date is %s."

// chatPrompt is the system prompt used for plain chat when the caller gives none.
func chatPrompt(now time.Time, signatures string) string {
	return fmt.Sprintf(chatPromptTemplate, now.Local().Format(promptTimeLayout), signatures)
}

// agentPrompt is the agent instruction used when the caller gives none.
func agentPrompt(now time.Time) string {
	return fmt.Sprintf(agentPromptTemplate, now.Local().Format(promptTimeLayout))
}
