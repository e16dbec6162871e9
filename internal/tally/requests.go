package tally

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

// DateLayout is the gateway's date format.
const DateLayout = "20060102"

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const companiesRequest = `<ENVELOPE>
 <HEADER><VERSION>1</VERSION><TALLYREQUEST>Export</TALLYREQUEST><TYPE>Collection</TYPE><ID>List of Companies</ID></HEADER>
 <BODY><DESC><STATICVARIABLES><SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT></STATICVARIABLES></DESC></BODY>
</ENVELOPE>`

func dayBookRequest(company string, from, to time.Time) string {
	return fmt.Sprintf(`<ENVELOPE>
 <HEADER><TALLYREQUEST>Export Data</TALLYREQUEST></HEADER>
 <BODY>
  <EXPORTDATA>
   <REQUESTDESC>
    <REPORTNAME>Voucher Register</REPORTNAME>
    <STATICVARIABLES>
     <SVCURRENTCOMPANY>%s</SVCURRENTCOMPANY>
     <SVFROMDATE>%s</SVFROMDATE>
     <SVTODATE>%s</SVTODATE>
     <EXPLODEFLAG>Yes</EXPLODEFLAG>
     <SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
    </STATICVARIABLES>
   </REQUESTDESC>
  </EXPORTDATA>
 </BODY>
</ENVELOPE>`, escape(company), from.Format(DateLayout), to.Format(DateLayout))
}

// collectionRequest asks for every object of one master type with the
// listed fields.
func collectionRequest(company, id, objectType string, fetch ...string) string {
	var fields bytes.Buffer
	for _, f := range fetch {
		fmt.Fprintf(&fields, "      <FETCH>%s</FETCH>\n", f)
	}
	return fmt.Sprintf(`<ENVELOPE>
 <HEADER><VERSION>1</VERSION><TALLYREQUEST>Export</TALLYREQUEST><TYPE>Collection</TYPE><ID>%[2]s</ID></HEADER>
 <BODY>
  <DESC>
   <STATICVARIABLES>
    <SVCURRENTCOMPANY>%[1]s</SVCURRENTCOMPANY>
    <SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
   </STATICVARIABLES>
   <TDL>
    <TDLMESSAGE>
     <COLLECTION NAME="%[2]s" ISMODIFY="No">
      <TYPE>%[3]s</TYPE>
      <BELONGSTO>Yes</BELONGSTO>
%[4]s     </COLLECTION>
    </TDLMESSAGE>
   </TDL>
  </DESC>
 </BODY>
</ENVELOPE>`, escape(company), id, objectType, fields.String())
}

func ledgersRequest(company string) string {
	return collectionRequest(company, "List of Ledgers", "Ledger", "Name", "Parent", "OpeningBalance")
}

func groupsRequest(company string) string {
	return collectionRequest(company, "List of Groups", "Group", "Name", "Parent", "IsRevenue", "AffectsGrossProfit", "NatureOfGroup")
}
