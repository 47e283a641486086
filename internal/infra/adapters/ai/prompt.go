package ai

import "fmt"

const summarySystemPrompt = `You are an expert Indian real estate data analyst and you are well versed with the jargons and technicalities used in real estate transactions. You will be given call transcripts and you will have to provide a call summary along with following data in JSON format.`

const summaryPromptTemplate = `Analyze this call transcript and extract the following information in JSON format:

Call Transcript: %s

Required JSON Output:
{
  "dto":
  {
    "Configuration": "",
    "Size_Range": "",
    "BSP": "",
    "Total_Units": "",
    "Units_available": "",
    "Completion_Date": "",
    "Additional_Notes": "",
    "Notes": ""
  }
}

Rules:
- If developer says "90%% sold" and total is 100 units, then 10 units available
- Mark as "Successful" even if project is sold out but developer gave information
- Use "Successful (absorption)" if got price + availability info
- Calculate BSP by dividing price by carpet area
- All the responses should be string.

Instructions:
- "Configuration": list BHK types mentioned, like "2,3".
- "Size_Range": the carpet area of the configurations as mentioned in the conversation. For configurations with carpet 750 and 1000 record "750-1000".
- "BSP": per square feet price, the price of a configuration divided by its carpet area; average across configurations when several are given.
- "Total_Units": total units planned in the project.
- "Units_available": units still available for booking, as per the developer.
- "Completion_Date": project completion time, or "Ready to Move" if completed.
- "Additional_Notes": expert summary covering everything contained in the call.
- "Notes": one word outcome label. 'Call back' when asked to call back or redirected to another number, 'Wrong number' for a wrong number, 'Voicemail' for voice mail or answering machines, 'Successful' when configuration, price, area, total units and availability were provided (or the developer stated the project is sold out), 'Successful (absorption)' when price plus availability/sold counts were provided, 'Partial' when everything except availability or sold counts was provided, 'Unsuccessful' when none of total units, price and availability information was given.`

func buildSummaryPrompt(transcript string) string {
	return fmt.Sprintf(summaryPromptTemplate, transcript)
}
